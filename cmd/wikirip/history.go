package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikirip/internal/config"
	"github.com/nao1215/wikirip/internal/database"
	"github.com/nao1215/wikirip/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [rip-id]",
		Short: "Show past rips",
		Long: `History lists rips stored in the history database, newest first.
Give a rip ID to print the full report of that run.

Examples:
  # List every rip
  wikirip history

  # List the last 5 rips of one site
  wikirip history --root https://wiki.example.org --limit 5

  # Show rip 3 as Markdown
  wikirip history 3 --markdown

  # Show which pages keep failing for a site
  wikirip history --failures --root https://wiki.example.org`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("root", "r", "",
		"Only list rips of this root URL")
	cmd.Flags().IntP("limit", "l", 0,
		"Maximum number of rips to list (0 lists all)")
	cmd.Flags().Bool("failures", false,
		"Count in how many rips of --root each suffix failed")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	root, err := flags.GetString("root")
	if err != nil {
		return err
	}
	failures, err := flags.GetBool("failures")
	if err != nil {
		return err
	}
	if failures && root == "" {
		return errors.New("--failures requires --root")
	}

	// Validate arguments before opening the database.
	var ripID int64
	if len(args) == 1 {
		ripID, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil || ripID <= 0 {
			return fmt.Errorf("invalid rip ID %q: must be a positive integer", args[0])
		}
	}

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	writer := report.New(cmd.OutOrStdout(), report.FormatFor(jsonOutput, markdownOutput))

	switch {
	case ripID > 0:
		ripReport, err := db.GetRip(ctx, ripID)
		if err != nil {
			return err
		}
		_, err = writer.Write(ripReport)
		return err

	case failures:
		counts, err := db.FailureHistory(ctx, root)
		if err != nil {
			return err
		}
		return writeFailureHistory(cmd, counts, jsonOutput)

	default:
		limit, err := flags.GetInt("limit")
		if err != nil {
			return err
		}
		rips, err := db.ListRips(ctx, root, limit)
		if err != nil {
			return err
		}
		_, err = writer.WriteHistory(rips)
		return err
	}
}

// failureCount is one line of the --failures listing.
type failureCount struct {
	Suffix string `json:"suffix"`
	Rips   int    `json:"rips"`
}

// writeFailureHistory prints suffixes ordered by how many rips they failed in.
func writeFailureHistory(cmd *cobra.Command, counts map[string]int, jsonOutput bool) error {
	list := make([]failureCount, 0, len(counts))
	for suffix, n := range counts {
		list = append(list, failureCount{Suffix: suffix, Rips: n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Rips != list[j].Rips {
			return list[i].Rips > list[j].Rips
		}
		return list[i].Suffix < list[j].Suffix
	})

	out := cmd.OutOrStdout()
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No failures recorded.")
		return err
	}
	for _, fc := range list {
		if _, err := fmt.Fprintf(out, "%5d  %s\n", fc.Rips, fc.Suffix); err != nil {
			return err
		}
	}
	return nil
}
