// Package s3 archives bootstrap results in S3-compatible object storage.
//
// Each node uploads its ClusterState as JSON under <prefix>/<node name>.json
// once the peers file has been written. The archive works against AWS S3 or
// any S3-compatible endpoint such as Hetzner Object Storage.
package s3
