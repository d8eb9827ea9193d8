package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/etcdseed/internal/bootstrap"
	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/platform/s3"
	etcdtest "github.com/imamik/etcdseed/internal/testing"
)

const peersFile = "ETCD_INITIAL_CLUSTER_STATE=existing\n" +
	"ETCD_NAME=i-self\n" +
	"ETCD_INITIAL_CLUSTER=i-x=http://10.0.0.1:2380,i-self=http://10.0.9.9:2380\n" +
	"ETCD_PROXY=off\n"

func TestShow_RawWhenNotATerminal(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.cfg.Etcd.PeersFile, []byte(peersFile), 0o644))

	var out bytes.Buffer
	err := Show(context.Background(), &out, ShowOptions{})

	require.NoError(t, err)
	assert.Equal(t, peersFile, out.String())
}

func TestShow_StyledOnTerminal(t *testing.T) {
	env := newTestEnv(t)
	isTerminal = func() bool { return true }
	require.NoError(t, os.WriteFile(env.cfg.Etcd.PeersFile, []byte(peersFile), 0o644))

	var out bytes.Buffer
	err := Show(context.Background(), &out, ShowOptions{})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Initial cluster")
	assert.Contains(t, out.String(), "http://10.0.9.9:2380")
	assert.Contains(t, out.String(), "existing")
}

func TestShow_MissingPeersFile(t *testing.T) {
	newTestEnv(t)

	err := Show(context.Background(), &bytes.Buffer{}, ShowOptions{})

	require.Error(t, err)
}

func TestShow_Archived(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Archive.Bucket = "states"
	require.NoError(t, os.WriteFile(env.cfg.Etcd.PeersFile, []byte(peersFile), 0o644))

	self := etcdtest.Self()
	env.archive.states["i-self"] = &bootstrap.ClusterState{
		State:   bootstrap.StateNew,
		Members: []etcd.Node{self},
		Self:    self,
	}

	var out bytes.Buffer
	require.NoError(t, Show(context.Background(), &out, ShowOptions{Archived: true}))

	var state bootstrap.ClusterState
	require.NoError(t, json.Unmarshal(out.Bytes(), &state))
	assert.Equal(t, bootstrap.StateNew, state.State)
	assert.Equal(t, self, state.Self)
}

func TestShow_ArchivedListsNodesWithoutName(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Archive.Bucket = "states"
	env.archive.states["i-a"] = &bootstrap.ClusterState{}

	var out bytes.Buffer
	require.NoError(t, Show(context.Background(), &out, ShowOptions{Archived: true}))

	assert.Equal(t, "i-a\n", out.String())
}

func TestShow_ArchivedUnknownNode(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Archive.Bucket = "states"

	err := Show(context.Background(), &bytes.Buffer{}, ShowOptions{Archived: true, Node: "i-unknown"})

	require.ErrorIs(t, err, s3.ErrNotArchived)
}

func TestShow_ArchivedRequiresBucket(t *testing.T) {
	newTestEnv(t)

	err := Show(context.Background(), &bytes.Buffer{}, ShowOptions{Archived: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVE_BUCKET")
}

func TestOrderedKeys(t *testing.T) {
	keys := orderedKeys(map[string]string{
		"ETCD_PROXY":                 "off",
		"ZZZ":                        "1",
		"ETCD_NAME":                  "n",
		"AAA":                        "2",
		"ETCD_INITIAL_CLUSTER_STATE": "new",
	})

	assert.Equal(t, []string{"ETCD_INITIAL_CLUSTER_STATE", "ETCD_NAME", "ETCD_PROXY", "AAA", "ZZZ"}, keys)
}
