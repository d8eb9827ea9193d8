package commands

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreVersion(t *testing.T) {
	t.Helper()
	origVersion, origCommit, origDate, origRead := version, commit, date, readBuildInfo
	t.Cleanup(func() {
		version, commit, date, readBuildInfo = origVersion, origCommit, origDate, origRead
	})
}

func TestVersion_Output(t *testing.T) {
	restoreVersion(t)
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	var out bytes.Buffer
	cmd := Version()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "etcdseed 1.2.3\n  commit: abc123\n  built:  2026-01-01\n", out.String())
}

func TestBuildVersion(t *testing.T) {
	restoreVersion(t)
	version = "dev"

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true
	}
	assert.Equal(t, "v0.4.0", buildVersion())

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	assert.Equal(t, "dev", buildVersion())

	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	assert.Equal(t, "dev", buildVersion())

	version = "1.0.0"
	assert.Equal(t, "1.0.0", buildVersion())
}
