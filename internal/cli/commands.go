package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wovenlabs/loom/internal/chatlog"
	"github.com/wovenlabs/loom/internal/graph"
)

var ingestAt string

var ingestCmd = &cobra.Command{
	Use:   "ingest \"Sender: message text\"",
	Short: "Ingest a single chat message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.DB.Close()

		ts := time.Now().UTC()
		if ingestAt != "" {
			ts, err = graph.ParseTimestamp(ingestAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
		}

		res, err := eng.Ingest(context.Background(), args[0], ts)
		if err != nil {
			return err
		}

		fmt.Printf("sender: %s\n", res.Sender.Name)
		fmt.Printf("entities: %d, relations: %d\n", len(res.Entities), len(res.Relations))
		return nil
	},
}

var graphFilter string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the current graph snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !graph.ValidFilter(graphFilter) {
			return fmt.Errorf("invalid --filter %q (now, 1h, 1d, 1w, 1m)", graphFilter)
		}

		eng, _, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.DB.Close()

		snap := eng.Snapshot(graphFilter, time.Now().UTC())

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		return out.Encode(snap)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <export.jsonl>",
	Short: "Bulk-ingest a JSONL chat export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := chatlog.ParseFile(args[0])
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Println("no usable lines found")
			return nil
		}

		eng, _, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.DB.Close()

		var processed, failed int
		for _, line := range lines {
			if _, err := eng.Ingest(context.Background(), line.Message(), line.Timestamp); err != nil {
				fmt.Fprintf(os.Stderr, "skip: %v\n", err)
				failed++
				continue
			}
			processed++
		}

		fmt.Printf("imported %d messages (%d failed) from %s\n", processed, failed, args[0])
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the graph and all persisted state",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.DB.Close()

		if err := eng.Reset(); err != nil {
			return err
		}
		fmt.Println("graph reset")
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestAt, "at", "", "message timestamp (RFC3339; defaults to now)")
	graphCmd.Flags().StringVar(&graphFilter, "filter", graph.FilterMonth, "time filter: now, 1h, 1d, 1w, 1m")
}
