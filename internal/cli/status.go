package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statuscope-ai/statuscope/internal/config"
	"github.com/statuscope-ai/statuscope/internal/domain"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <org-id>",
		Short: "Show sync status for an organization",
		Long:  "Compare indexed documents against live source records per source type",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	orgID := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	status, err := eng.syncSvc.GetSyncStatus(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to get sync status: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Sync status for org %s (checked %s)\n", status.OrgID, status.CheckedAt.Format("2006-01-02 15:04:05"))
	for _, st := range domain.AllSourceTypes() {
		s, ok := status.PerSourceType[st]
		if !ok {
			continue
		}
		state := "in sync"
		if !s.InSync {
			state = "stale"
		}
		fmt.Printf("  %-14s indexed %4d / live %4d  (%s)\n", st, s.Indexed, s.Live, state)
	}
	return nil
}
