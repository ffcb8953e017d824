package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/logloom/internal/filterstore"
	"github.com/atikulmunna/logloom/internal/parser"
	"github.com/atikulmunna/logloom/internal/session"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "logloom",
	Short: "logloom — merge and filter log files on one timeline",
	Long: `logloom loads one or more log files, applies a per-file chain of
include/exclude filters (plain text or regex), and shows every surviving line
from every file on a single timeline, ordered by timestamp.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.logloom.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text, plain, json")
	rootCmd.PersistentFlags().Int("year", 0, "year for timestamps that carry none, e.g. syslog (default: current year)")
	rootCmd.PersistentFlags().StringArrayP("filters", "f", nil, "attach a filter file to a log: <file>=<filters.json> (repeatable)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("year", rootCmd.PersistentFlags().Lookup("year"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logloom")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("logloom")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// referenceYear is the year stamped on timestamps that do not carry one.
func referenceYear() int {
	if y := viper.GetInt("year"); y > 0 {
		return y
	}
	return time.Now().Year()
}

func newSession() *session.Session {
	return session.New(parser.NewAutoParser(referenceYear()))
}

// filterFiles merges the "filters" map from config with --filters flags.
// Flags win over config for the same log file.
func filterFiles(cmd *cobra.Command) (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range viper.GetStringMapString("filters") {
		out[k] = v
	}

	flags, err := cmd.Flags().GetStringArray("filters")
	if err != nil {
		return nil, err
	}
	for _, spec := range flags {
		file, path, ok := strings.Cut(spec, "=")
		if !ok || file == "" || path == "" {
			return nil, fmt.Errorf("invalid --filters %q, want <file>=<filters.json>", spec)
		}
		out[file] = path
	}
	return out, nil
}

// applyFilterFiles loads each filter file into the matching session file.
// Filter files for logs that are not loaded are skipped with a warning.
func applyFilterFiles(s *session.Session, files map[string]string) error {
	for file, path := range files {
		if !s.Has(file) {
			fmt.Fprintf(os.Stderr, "warning: filters %s name %s, which is not loaded\n", path, file)
			continue
		}
		chain, err := filterstore.Load(path)
		if err != nil {
			return fmt.Errorf("load filters for %s: %w", file, err)
		}
		s.ReplaceFilters(file, chain)
	}
	return nil
}
