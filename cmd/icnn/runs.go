package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/icnn/internal/runlog"
)

// runRuns lists the runs in a run log, or prints one run's losses with -id.
func runRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "runs.sqlite3", "SQLite run log")
	limit := fs.Int("n", 20, "Show at most this many runs (0 = all)")
	id := fs.Int64("id", 0, "Print the per-batch losses of this run")
	_ = fs.Parse(args)

	if _, err := os.Stat(*dbPath); err != nil {
		return fmt.Errorf("run log %s: %w", *dbPath, err)
	}
	store, err := runlog.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if *id != 0 {
		losses, err := store.Losses(ctx, *id)
		if errors.Is(err, runlog.ErrNotFound) {
			return fmt.Errorf("no run #%d in %s", *id, *dbPath)
		}
		if err != nil {
			return err
		}
		for i, l := range losses {
			fmt.Printf("%d\t%.6f\n", i, l)
		}
		return nil
	}

	runs, err := store.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tMODEL\tEPOCHS\tBATCHES\tFINAL LOSS\tPARAMS")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.6f\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Model,
			r.Epochs, r.Batches, r.FinalLoss, formatParams(r.Params))
	}
	return w.Flush()
}

func formatParams(p map[string]string) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, " ")
}
