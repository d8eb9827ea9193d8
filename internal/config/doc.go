// Package config defines the configuration of a bootstrap run.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and environment variables. The environment
// variable names are the ones the etcd peers file tooling has always used
// (PEERS_FILE, CLIENT_PORT, MAX_RETRIES, HOSTED_ZONE_ID, ...), so existing
// cloud-init and systemd units keep working.
package config
