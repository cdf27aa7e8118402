package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statuscope-ai/statuscope/internal/config"
	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/service"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <org-id>",
		Short: "Run a one-off knowledge sync for an organization",
		Long:  "Index an organization's source records into the knowledge store without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE:  runSync,
	}

	cmd.Flags().Bool("force", false, "Re-embed documents even if already indexed")
	cmd.Flags().StringSlice("source-types", nil, "Restrict to specific source types (comma-separated)")
	cmd.Flags().String("project", "", "Restrict to a single project")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	orgID := args[0]

	force, _ := cmd.Flags().GetBool("force")
	rawTypes, _ := cmd.Flags().GetStringSlice("source-types")
	projectID, _ := cmd.Flags().GetString("project")
	outputFormat, _ := cmd.Flags().GetString("output")

	var sourceTypes []domain.SourceType
	for _, raw := range rawTypes {
		st := domain.SourceType(raw)
		if !domain.IsValidSourceType(st) {
			return fmt.Errorf("invalid source type: %s", raw)
		}
		sourceTypes = append(sourceTypes, st)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	opts := service.SyncOptions{
		SourceTypes: sourceTypes,
		ForceUpdate: force,
	}

	var summary *service.SyncSummary
	if projectID != "" {
		summary, err = eng.syncSvc.SyncProject(ctx, projectID, opts)
	} else {
		summary, err = eng.syncSvc.SyncOrganization(ctx, orgID, opts)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Sync complete: %d processed, %d skipped, %d errors\n",
		summary.Processed, summary.Skipped, len(summary.Errors))
	for _, e := range summary.Errors {
		fmt.Printf("  %s/%s: %s\n", e.SourceType, e.SourceID, e.Message)
	}
	return nil
}
