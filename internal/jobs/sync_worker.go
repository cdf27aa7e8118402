package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/statuscope-ai/statuscope/internal/service"
)

// OrgLister enumerates organizations eligible for background indexing.
type OrgLister interface {
	ListOrgIDs(ctx context.Context) ([]string, error)
}

// OrgSyncer runs a sync pass for one organization.
type OrgSyncer interface {
	SyncOrganization(ctx context.Context, orgID string, opts service.SyncOptions) (*service.SyncSummary, error)
}

// SyncProcessor walks every organization and re-indexes it. Unchanged
// documents are skipped inside the sync pass, so a quiet organization
// costs only source-table reads.
type SyncProcessor struct {
	orgs   OrgLister
	syncer OrgSyncer
}

// NewSyncProcessor creates a new SyncProcessor instance
func NewSyncProcessor(orgs OrgLister, syncer OrgSyncer) *SyncProcessor {
	return &SyncProcessor{
		orgs:   orgs,
		syncer: syncer,
	}
}

// ProcessJobs implements the Processor interface
func (p *SyncProcessor) ProcessJobs(ctx context.Context) error {
	orgIDs, err := p.orgs.ListOrgIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	if len(orgIDs) == 0 {
		return nil
	}

	log.Printf("Syncing %d organizations", len(orgIDs))

	for _, orgID := range orgIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		summary, err := p.syncer.SyncOrganization(ctx, orgID, service.SyncOptions{})
		if err != nil {
			log.Printf("Error syncing organization %s: %v", orgID, err)
			continue
		}
		if len(summary.Errors) > 0 {
			log.Printf("Organization %s synced with %d document errors (processed %d, skipped %d)",
				orgID, len(summary.Errors), summary.Processed, summary.Skipped)
		} else {
			log.Printf("Organization %s synced (processed %d, skipped %d)",
				orgID, summary.Processed, summary.Skipped)
		}
	}

	return nil
}
