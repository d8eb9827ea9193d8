package labels

import (
	"sort"
	"strings"
)

// Standard label keys for Hetzner Cloud servers.
const (
	// KeyGroup identifies the etcd cluster a server belongs to
	KeyGroup = "etcdseed.io/group"

	// KeyRole identifies what the server runs
	KeyRole = "etcdseed.io/role"
)

// RoleEtcd marks a server running an etcd member.
const RoleEtcd = "etcd"

// LabelBuilder provides a fluent interface for building server labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder for an etcd server of group.
func NewLabelBuilder(group string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyGroup: group,
			KeyRole:  RoleEtcd,
		},
	}
}

// Merge adds all labels from the provided map. The group and role labels
// cannot be overridden.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		if k == KeyGroup || k == KeyRole {
			continue
		}
		lb.labels[k] = v
	}
	return lb
}

// Selector renders the labels as an hcloud label selector, keys sorted.
func (lb *LabelBuilder) Selector() string {
	keys := make([]string, 0, len(lb.labels))
	for k := range lb.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+lb.labels[k])
	}
	return strings.Join(parts, ",")
}

// SelectorForGroup returns the label selector for the etcd servers of group,
// narrowed by any extra labels.
func SelectorForGroup(group string, extra map[string]string) string {
	return NewLabelBuilder(group).Merge(extra).Selector()
}
