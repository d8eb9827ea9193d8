package aws

import (
	"context"
	"io"
	"strings"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	astypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
)

type fakeMetadata struct {
	instanceID string
	localIP    string
	err        error
}

func (f *fakeMetadata) GetInstanceIdentityDocument(context.Context, *imds.GetInstanceIdentityDocumentInput, ...func(*imds.Options)) (*imds.GetInstanceIdentityDocumentOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &imds.GetInstanceIdentityDocumentOutput{}
	out.InstanceID = f.instanceID
	out.Region = "eu-west-1"
	out.PrivateIP = f.localIP
	return out, nil
}

func (f *fakeMetadata) GetMetadata(_ context.Context, in *imds.GetMetadataInput, _ ...func(*imds.Options)) (*imds.GetMetadataOutput, error) {
	if in.Path != "local-ipv4" {
		return nil, apiError("NotFound")
	}
	return &imds.GetMetadataOutput{Content: io.NopCloser(strings.NewReader(f.localIP + "\n"))}, nil
}

type groupInstance struct {
	id    string
	state astypes.LifecycleState
}

type fakeAutoScaling struct {
	mu        sync.Mutex
	group     string
	instances []groupInstance
	errs      []error
	calls     int
}

func (f *fakeAutoScaling) nextErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeAutoScaling) DescribeAutoScalingInstances(_ context.Context, in *autoscaling.DescribeAutoScalingInstancesInput, _ ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingInstancesOutput, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	out := &autoscaling.DescribeAutoScalingInstancesOutput{}
	if f.group == "" {
		return out, nil
	}
	for _, id := range in.InstanceIds {
		out.AutoScalingInstances = append(out.AutoScalingInstances, astypes.AutoScalingInstanceDetails{
			InstanceId:           awsv2.String(id),
			AutoScalingGroupName: awsv2.String(f.group),
		})
	}
	return out, nil
}

func (f *fakeAutoScaling) DescribeAutoScalingGroups(_ context.Context, in *autoscaling.DescribeAutoScalingGroupsInput, _ ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	group := astypes.AutoScalingGroup{AutoScalingGroupName: awsv2.String(in.AutoScalingGroupNames[0])}
	for _, inst := range f.instances {
		group.Instances = append(group.Instances, astypes.Instance{
			InstanceId:     awsv2.String(inst.id),
			LifecycleState: inst.state,
		})
	}
	return &autoscaling.DescribeAutoScalingGroupsOutput{AutoScalingGroups: []astypes.AutoScalingGroup{group}}, nil
}

type fakeEC2 struct {
	mu        sync.Mutex
	ips       map[string]string
	requested [][]string
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.mu.Lock()
	f.requested = append(f.requested, in.InstanceIds)
	f.mu.Unlock()

	var instances []ec2types.Instance
	for _, id := range in.InstanceIds {
		inst := ec2types.Instance{InstanceId: awsv2.String(id)}
		if ip, ok := f.ips[id]; ok {
			inst.PrivateIpAddress = awsv2.String(ip)
		}
		instances = append(instances, inst)
	}
	return &ec2.DescribeInstancesOutput{Reservations: []ec2types.Reservation{{Instances: instances}}}, nil
}

type fakeRoute53 struct {
	inputs []*route53.ChangeResourceRecordSetsInput
	err    error
}

func (f *fakeRoute53) ChangeResourceRecordSets(_ context.Context, in *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &route53.ChangeResourceRecordSetsOutput{
		ChangeInfo: &r53types.ChangeInfo{Id: awsv2.String("C1"), Status: r53types.ChangeStatusPending},
	}, nil
}

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}
