package aws

import (
	"context"
	"fmt"
	"log"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/imamik/etcdseed/internal/discovery"
	"github.com/imamik/etcdseed/internal/etcd"
)

const changeComment = "Used by the Etcd cluster to advertise to proxies"

// Route53Publisher implements discovery.Publisher with a single UPSERT
// change batch per run.
type Route53Publisher struct {
	api    Route53API
	zoneID string
}

// NewRoute53Publisher creates a publisher for the hosted zone zoneID.
func NewRoute53Publisher(api Route53API, zoneID string) *Route53Publisher {
	return &Route53Publisher{api: api, zoneID: zoneID}
}

// Publish upserts the server and client SRV record sets for members.
func (r *Route53Publisher) Publish(ctx context.Context, domain string, members []etcd.Node) error {
	batch := ChangeBatch(domain, members)
	out, err := r.api.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: awsv2.String(r.zoneID),
		ChangeBatch:  batch,
	})
	if err != nil {
		return fmt.Errorf("failed to change record sets in zone %s: %w", r.zoneID, err)
	}

	status := ""
	if out != nil && out.ChangeInfo != nil {
		status = string(out.ChangeInfo.Status)
	}
	log.Printf("[DNS] Upserted %d SRV record sets in zone %s (%s)", len(batch.Changes), r.zoneID, status)
	return nil
}

// ChangeBatch builds the UPSERT batch for the SRV records of members.
// Record names are fully qualified.
func ChangeBatch(domain string, members []etcd.Node) *r53types.ChangeBatch {
	domain = strings.TrimSuffix(domain, ".")
	batch := &r53types.ChangeBatch{Comment: awsv2.String(changeComment)}

	for _, set := range discovery.SRVRecords(domain, members) {
		records := make([]r53types.ResourceRecord, 0, len(set.Targets))
		for _, t := range set.Targets {
			records = append(records, r53types.ResourceRecord{Value: awsv2.String(t.Value())})
		}
		batch.Changes = append(batch.Changes, r53types.Change{
			Action: r53types.ChangeActionUpsert,
			ResourceRecordSet: &r53types.ResourceRecordSet{
				Name:            awsv2.String(set.Name + "."),
				Type:            r53types.RRTypeSrv,
				TTL:             awsv2.Int64(discovery.RecordTTL),
				ResourceRecords: records,
			},
		})
	}
	return batch
}
