package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/etcdseed/internal/envfile"
)

var (
	showTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	showSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	showNameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	showValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	showDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// renderPeers produces a lipgloss-styled view of a peers file.
func renderPeers(path string, values map[string]string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(showTitleStyle.Render("  etcdseed peers: " + path))
	b.WriteString("\n")
	b.WriteString(showDimStyle.Render("  " + strings.Repeat("=", 30)))
	b.WriteString("\n\n")

	for _, key := range orderedKeys(values) {
		if key == envfile.KeyInitialCluster {
			continue
		}
		fmt.Fprintf(&b, "  %s  %s\n", showNameStyle.Render(fmt.Sprintf("%-28s", key)), showValueStyle.Render(values[key]))
	}

	if cluster := values[envfile.KeyInitialCluster]; cluster != "" {
		b.WriteString("\n")
		b.WriteString(showSectionStyle.Render("  Initial cluster"))
		b.WriteString("\n")
		b.WriteString(showDimStyle.Render("  " + strings.Repeat("-", 35)))
		b.WriteString("\n")
		for _, member := range strings.Split(cluster, ",") {
			name, peerURL, _ := strings.Cut(member, "=")
			fmt.Fprintf(&b, "  %s  %s\n", showNameStyle.Render(fmt.Sprintf("%-28s", name)), showValueStyle.Render(peerURL))
		}
	}

	b.WriteString("\n")
	return b.String()
}
