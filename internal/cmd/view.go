package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/logloom/internal/aggregator"
	"github.com/atikulmunna/logloom/internal/filter"
	"github.com/atikulmunna/logloom/internal/filterstore"
	"github.com/atikulmunna/logloom/internal/loader"
	"github.com/atikulmunna/logloom/internal/model"
	"github.com/atikulmunna/logloom/internal/output"
	"github.com/atikulmunna/logloom/internal/session"
)

var viewCmd = &cobra.Command{
	Use:   "view [paths...]",
	Short: "Print the merged, filtered view of one or more log files",
	Long: `Load one or more log files (or glob patterns), apply each file's filter
chain and print every surviving line on one timeline.

Examples:
  logloom view app.log db.log
  logloom view "/var/log/**/*.log" --from "2024-06-01 10:00:00.000"
  logloom view app.log -f app.log=errors.json --out filtered_log.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().String("from", "", "drop lines before this time")
	viewCmd.Flags().String("to", "", "drop lines after this time")
	viewCmd.Flags().String("out", "", "also write the view to this file as [file] [timestamp] content")
	viewCmd.Flags().String("save-filters", "", "write each file's filter chain to <dir>/<file>_filters.json")
	viewCmd.Flags().Bool("stats", false, "print a per-file summary to stderr")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	sess, err := loadSession(cmd, args)
	if err != nil {
		return err
	}

	if err := applyRange(cmd, sess); err != nil {
		return err
	}

	res, err := sess.Merge()
	if err != nil {
		for _, pe := range filter.PatternErrors(err) {
			fmt.Fprintf(os.Stderr, "bad filter: %s\n", pe)
		}
		return fmt.Errorf("cannot render view: %w", err)
	}

	renderer, err := output.New(viper.GetString("output"), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := output.RenderAll(renderer, res.Lines); err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeView(out, res.Lines); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Filtered log saved to: %s\n", out)
	}
	if dir, _ := cmd.Flags().GetString("save-filters"); dir != "" {
		if err := saveFilters(sess, dir); err != nil {
			return err
		}
	}
	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		printStats(os.Stderr, aggregator.Summarize(res))
	}
	return nil
}

// loadSession expands args, loads every file and attaches filter files.
func loadSession(cmd *cobra.Command, args []string) (*session.Session, error) {
	paths, err := loader.Expand(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files matched the given patterns: %v", args)
	}

	sess := newSession()
	if _, err := loader.LoadPaths(sess, paths); err != nil {
		return nil, err
	}

	files, err := filterFiles(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyFilterFiles(sess, files); err != nil {
		return nil, err
	}
	return sess, nil
}

// applyRange overrides the loaded span with --from/--to when either is given.
func applyRange(cmd *cobra.Command, sess *session.Session) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if from == "" && to == "" {
		return nil
	}

	start, err := model.ParseBound(from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	end, err := model.ParseBound(to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	sess.SetTimeRange(start, end)
	return nil
}

func writeView(path string, lines []model.MergedLine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := output.RenderAll(output.NewPlainRenderer(w), lines); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveFilters(sess *session.Session, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, id := range sess.Files() {
		chain := sess.GetFilters(id)
		if len(chain) == 0 {
			continue
		}
		path := filepath.Join(dir, filterstore.DefaultName(id))
		if err := filterstore.Save(path, chain); err != nil {
			return fmt.Errorf("save filters for %s: %w", id, err)
		}
		fmt.Fprintf(os.Stderr, "Filters for %s saved to: %s\n", id, path)
	}
	return nil
}

func printStats(w io.Writer, st aggregator.Stats) {
	fmt.Fprintf(w, "%d line(s) shown, span %s\n", st.TotalLines, st.Span)
	for _, f := range st.Files {
		fmt.Fprintf(w, "   • %s: %d of %d lines (%d timestamped)\n", f.File, f.Visible, f.Total, f.Timestamped)
	}
}
