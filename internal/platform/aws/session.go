package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/imamik/etcdseed/internal/etcd"
)

// Session holds the discovery clients of one run, configured for the region the
// instance runs in.
type Session struct {
	Region      string
	Metadata    MetadataAPI
	AutoScaling AutoScalingAPI
	EC2         EC2API
}

// NewSession resolves the instance region from IMDS and creates the
// regional clients.
func NewSession(ctx context.Context) (*Session, error) {
	meta := imds.New(imds.Options{})

	doc, err := meta.GetInstanceIdentityDocument(ctx, &imds.GetInstanceIdentityDocumentInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to read instance identity document: %w", err)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(doc.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Session{
		Region:      doc.Region,
		Metadata:    meta,
		AutoScaling: autoscaling.NewFromConfig(cfg),
		EC2:         ec2.NewFromConfig(cfg),
	}, nil
}

// PeerGroup returns the Auto Scaling peer provider of the session.
func (s *Session) PeerGroup(urls etcd.URLBuilder, maxRetries int, interval time.Duration) *PeerGroup {
	return NewPeerGroup(s.Metadata, s.AutoScaling, s.EC2, urls, WithRetry(maxRetries, interval))
}

// LoadRoute53Publisher creates a publisher for zoneID with the default AWS
// configuration. Route53 is a global service, so no instance metadata is needed.
func LoadRoute53Publisher(ctx context.Context, zoneID string) (*Route53Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewRoute53Publisher(route53.NewFromConfig(cfg), zoneID), nil
}
