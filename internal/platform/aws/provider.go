package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	astypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/imamik/etcdseed/internal/discovery"
	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/util/retry"
)

// ErrNotInGroup is returned when the instance is not part of an Auto Scaling group.
var ErrNotInGroup = errors.New("instance is not in an auto scaling group")

// PeerGroup implements discovery.Provider for EC2 Auto Scaling groups.
type PeerGroup struct {
	metadata    MetadataAPI
	autoscaling AutoScalingAPI
	ec2         EC2API
	urls        etcd.URLBuilder

	maxRetries int
	interval   time.Duration
}

// PeerGroupOption configures a PeerGroup.
type PeerGroupOption func(*PeerGroup)

// WithRetry bounds the retries of throttled API calls.
func WithRetry(maxRetries int, interval time.Duration) PeerGroupOption {
	return func(p *PeerGroup) {
		p.maxRetries = maxRetries
		p.interval = interval
	}
}

// NewPeerGroup creates an Auto Scaling peer provider.
func NewPeerGroup(meta MetadataAPI, as AutoScalingAPI, ec2API EC2API, urls etcd.URLBuilder, opts ...PeerGroupOption) *PeerGroup {
	p := &PeerGroup{
		metadata:    meta,
		autoscaling: as,
		ec2:         ec2API,
		urls:        urls,
		maxRetries:  5,
		interval:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Discover resolves this instance and the InService instances of its group.
func (p *PeerGroup) Discover(ctx context.Context) (*discovery.Identity, error) {
	instanceID, localIP, err := p.self(ctx)
	if err != nil {
		return nil, err
	}
	self := p.urls.Candidate(instanceID, localIP)

	group, err := p.groupName(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	ids, err := p.inServicePeers(ctx, group, instanceID)
	if err != nil {
		return nil, err
	}

	ips, err := p.privateIPs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var peers []etcd.Node
	for _, id := range ids {
		ip, ok := ips[id]
		if !ok {
			log.Printf("[AWS] Skipping instance %s: no private IP", id)
			continue
		}
		peers = append(peers, p.urls.Candidate(id, ip))
	}

	return &discovery.Identity{
		Group: group,
		Self:  self,
		Peers: discovery.ExcludeSelf(self, peers),
	}, nil
}

func (p *PeerGroup) self(ctx context.Context) (string, string, error) {
	doc, err := p.metadata.GetInstanceIdentityDocument(ctx, &imds.GetInstanceIdentityDocumentInput{})
	if err != nil {
		return "", "", fmt.Errorf("failed to read instance identity document: %w", err)
	}

	out, err := p.metadata.GetMetadata(ctx, &imds.GetMetadataInput{Path: "local-ipv4"})
	if err != nil {
		return "", "", fmt.Errorf("failed to read local-ipv4 from metadata: %w", err)
	}
	defer func() { _ = out.Content.Close() }()

	raw, err := io.ReadAll(out.Content)
	if err != nil {
		return "", "", fmt.Errorf("failed to read local-ipv4 from metadata: %w", err)
	}
	ip := strings.TrimSpace(string(raw))
	if ip == "" {
		return "", "", fmt.Errorf("metadata returned an empty local-ipv4")
	}

	return doc.InstanceID, ip, nil
}

func (p *PeerGroup) groupName(ctx context.Context, instanceID string) (string, error) {
	var out *autoscaling.DescribeAutoScalingInstancesOutput
	err := retry.Fixed(ctx, func(int) error {
		var err error
		out, err = p.autoscaling.DescribeAutoScalingInstances(ctx, &autoscaling.DescribeAutoScalingInstancesInput{
			InstanceIds: []string{instanceID},
		})
		return classify(err)
	}, p.retryOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to describe auto scaling instance %s: %w", instanceID, err)
	}
	if len(out.AutoScalingInstances) == 0 || out.AutoScalingInstances[0].AutoScalingGroupName == nil {
		return "", fmt.Errorf("%s: %w", instanceID, ErrNotInGroup)
	}
	return *out.AutoScalingInstances[0].AutoScalingGroupName, nil
}

// inServicePeers returns the InService instance IDs of group other than self,
// in the order the group reports them.
func (p *PeerGroup) inServicePeers(ctx context.Context, group, self string) ([]string, error) {
	var out *autoscaling.DescribeAutoScalingGroupsOutput
	err := retry.Fixed(ctx, func(int) error {
		var err error
		out, err = p.autoscaling.DescribeAutoScalingGroups(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
			AutoScalingGroupNames: []string{group},
		})
		return classify(err)
	}, p.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to describe auto scaling group %s: %w", group, err)
	}
	if len(out.AutoScalingGroups) == 0 {
		return nil, fmt.Errorf("auto scaling group not found: %s", group)
	}

	var ids []string
	for _, inst := range out.AutoScalingGroups[0].Instances {
		id := awsv2.ToString(inst.InstanceId)
		if id == "" || id == self || inst.LifecycleState != astypes.LifecycleStateInService {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *PeerGroup) privateIPs(ctx context.Context, ids []string) (map[string]string, error) {
	ips := make(map[string]string, len(ids))
	// DescribeInstances without IDs would list the whole account.
	if len(ids) == 0 {
		return ips, nil
	}

	err := retry.Fixed(ctx, func(int) error {
		paginator := ec2.NewDescribeInstancesPaginator(p.ec2, &ec2.DescribeInstancesInput{InstanceIds: ids})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return classify(err)
			}
			for _, r := range page.Reservations {
				for _, inst := range r.Instances {
					if ip := awsv2.ToString(inst.PrivateIpAddress); ip != "" {
						ips[awsv2.ToString(inst.InstanceId)] = ip
					}
				}
			}
		}
		return nil
	}, p.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}
	return ips, nil
}

func (p *PeerGroup) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(p.maxRetries),
		retry.WithInterval(p.interval),
	}
}
