// Package aws discovers etcd peers in an EC2 Auto Scaling group and
// publishes the cluster's SRV records in Route53.
//
// Discovery reads the instance identity and local IPv4 from the instance
// metadata service, finds the Auto Scaling group the instance belongs to,
// keeps the group's InService instances other than itself, and resolves
// their private IPs through EC2. Instance IDs are used as etcd member names.
//
// The SDK clients are used through narrow interfaces so that tests can
// replace them.
package aws
