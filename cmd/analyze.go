package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/ingest"
	"github.com/dewart-reps/mileage-cli/internal/resolver"
)

var (
	analyzeInput   string
	analyzeLookup  bool
	analyzeConfirm string
	analyzeStart   string
	analyzeEnd     string
	analyzeDir     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a telematics trip export and write mileage reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		trips, skipped, err := ingest.ReadTrips(analyzeInput)
		if err != nil {
			return eris.Wrap(err, "read trips")
		}
		if skipped > 0 {
			zap.L().Warn("skipped unparsable rows", zap.Int("rows", skipped))
		}

		start, end, err := parseDateRange(analyzeStart, analyzeEnd)
		if err != nil {
			return err
		}
		trips = ingest.FilterRange(trips, start, end)
		if len(trips) == 0 {
			return eris.New("no trips found in the specified date range")
		}

		confirm, err := confirmerFor(analyzeConfirm)
		if err != nil {
			return err
		}

		lookup := analyzeLookup || cfg.Lookup.Enabled
		env, err := initEnv(ctx, lookup, confirm)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, trips)
		if err != nil {
			return eris.Wrap(err, "run analysis")
		}

		if analyzeDir != "" {
			env.Writer = env.Writer.WithDir(analyzeDir)
		}
		paths, err := env.Writer.WriteAll(ctx, result)
		if err != nil {
			return eris.Wrap(err, "write reports")
		}

		fmt.Printf("Analyzed %d trips (%d merges, %d micro-trips flagged)\n",
			len(result.Trips), result.MergeCount, result.MicroCount)
		fmt.Printf("Business %.1f mi, Personal %.1f mi (incl. commute %.1f mi), Total %.1f mi\n",
			result.Totals.Business, result.Totals.PersonalReported(),
			result.Totals.Commute, result.Totals.Total)
		for _, p := range paths {
			fmt.Printf("  wrote %s\n", p)
		}
		if n := len(env.Store.Unresolved()); n > 0 {
			fmt.Printf("%d addresses unresolved; run 'mileage-cli mappings unresolved' to review\n", n)
		}
		return nil
	},
}

// parseDateRange parses --start/--end dates. The end bound is inclusive
// through end of day.
func parseDateRange(startStr, endStr string) (start, end time.Time, err error) {
	if startStr != "" {
		start, err = time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			return start, end, eris.Wrapf(err, "invalid start date %q", startStr)
		}
	}
	if endStr != "" {
		end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
		if err != nil {
			return start, end, eris.Wrapf(err, "invalid end date %q", endStr)
		}
		end = end.Add(24*time.Hour - time.Second)
	}
	return start, end, nil
}

// confirmerFor maps the --confirm flag to a suggestion confirmer.
func confirmerFor(mode string) (resolver.Confirmer, error) {
	switch mode {
	case "accept":
		return resolver.AcceptAll(), nil
	case "decline":
		return resolver.DeclineAll(), nil
	case "prompt":
		return promptConfirmer(), nil
	}
	return nil, eris.Errorf("invalid --confirm mode %q (accept, decline, or prompt)", mode)
}

// promptConfirmer asks on stdin whether a suggested business name should be
// applied to an address.
func promptConfirmer() resolver.Confirmer {
	reader := bufio.NewReader(os.Stdin)
	return resolver.ConfirmerFunc(func(ctx context.Context, address, candidate string) (bool, error) {
		fmt.Printf("Use %q for %s? [y/N] ", candidate, address)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "trip export file, CSV or XLSX (required)")
	analyzeCmd.Flags().BoolVar(&analyzeLookup, "lookup", false, "enable live business lookup")
	analyzeCmd.Flags().StringVar(&analyzeConfirm, "confirm", "decline", "fuzzy suggestion handling: accept, decline, or prompt")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "start date YYYY-MM-DD (inclusive)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "end date YYYY-MM-DD (inclusive)")
	analyzeCmd.Flags().StringVar(&analyzeDir, "report-dir", "", "report output directory (default from config)")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}
