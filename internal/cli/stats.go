package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statuscope-ai/statuscope/internal/config"
	"github.com/statuscope-ai/statuscope/internal/domain"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <org-id>",
		Short: "Show knowledge base statistics for an organization",
		Long:  "Print indexed chunk counts per source type",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
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

	counts, err := eng.retrievalSvc.GetKnowledgeBaseStats(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to get knowledge base stats: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(counts, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	total := 0
	fmt.Printf("Knowledge base stats for org %s\n", orgID)
	for _, st := range domain.AllSourceTypes() {
		n, ok := counts[st]
		if !ok {
			continue
		}
		fmt.Printf("  %-14s %4d chunks\n", st, n)
		total += n
	}
	fmt.Printf("  %-14s %4d chunks\n", "total", total)
	return nil
}
