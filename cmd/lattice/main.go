// Package main contains the lattice CLI: a cobra-based front end over
// the engine package, running SQL statements against a file-backed
// database directory.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/config"
	"github.com/latticedb/lattice/engine"
	"github.com/latticedb/lattice/exec"
	"github.com/latticedb/lattice/logging"
	"github.com/latticedb/lattice/plan"
)

type rootFlags struct {
	dataDir  string
	noSync   bool
	logLevel string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "lattice",
		Short: "A single-node, file-backed SQL database engine",
	}
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data", "./lattice-data", "database data directory")
	rootCmd.PersistentFlags().BoolVar(&flags.noSync, "no-sync", false, "skip fsync on writes (faster, less durable)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(execCmd(flags))
	rootCmd.AddCommand(explainCmd(flags))
	rootCmd.AddCommand(shellCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openEngine(flags *rootFlags) (*engine.Engine, error) {
	cfg := config.Default()
	cfg.DataDir = flags.dataDir
	cfg.Sync = !flags.noSync
	cfg.LogLevel = flags.logLevel
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(cfg)
	return engine.Open(cfg)
}

func execCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a single SQL statement and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, err := openEngine(flags)
			if err != nil {
				return err
			}
			rs, err := e.Execute(args[0])
			if err != nil {
				return err
			}
			printResultSet(os.Stdout, rs)
			return nil
		},
	}
}

func explainCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <sql>",
		Short: "Print the structural plan for a SELECT statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, err := openEngine(flags)
			if err != nil {
				return err
			}
			doc, err := e.Explain(args[0])
			if err != nil {
				return err
			}
			printExplain(os.Stdout, doc)
			return nil
		},
	}
}

func shellCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive SQL shell",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEngine(flags)
			if err != nil {
				return err
			}
			return runShell(e, os.Stdin, os.Stdout)
		},
	}
}

func runShell(e *engine.Engine, in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "lattice shell — enter SQL statements, 'exit' to quit")
	for {
		fmt.Fprint(out, "lattice> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}
		rs, err := e.Execute(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		printResultSet(out, rs)
	}
}

func printResultSet(out *os.File, rs *exec.ResultSet) {
	if len(rs.Columns) == 0 {
		fmt.Fprintln(out, "OK")
		return
	}
	fmt.Fprintln(out, strings.Join(rs.Columns, "\t"))
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Fprintln(out, strings.Join(cells, "\t"))
	}
	fmt.Fprintf(out, "(%d row(s))\n", len(rs.Rows))
}

func printExplain(out *os.File, doc *plan.Document) {
	fmt.Fprintln(out, "kind:", doc.Kind)
	for _, s := range doc.Sources {
		if s.Method == "index-scan" {
			fmt.Fprintf(out, "  source: %s as %s -> index-scan via %s on %s\n", s.Table, s.Alias, s.IndexName, s.ProbeColumn)
		} else {
			fmt.Fprintf(out, "  source: %s as %s -> full-scan\n", s.Table, s.Alias)
		}
	}
	for _, j := range doc.Joins {
		if j.IndexAware {
			fmt.Fprintf(out, "  join: %s ON %s -> index-aware via %s on %s\n", j.Type, j.Condition, j.IndexName, j.ProbeColumn)
		} else {
			fmt.Fprintf(out, "  join: %s ON %s -> nested-loop\n", j.Type, j.Condition)
		}
	}
	if doc.Grouping != nil {
		fmt.Fprintf(out, "  group by: %v, aggregates: %v\n", doc.Grouping.Columns, doc.Grouping.Aggregates)
	}
	if doc.HasHaving {
		fmt.Fprintln(out, "  having: present")
	}
	if len(doc.OrderBy) > 0 {
		fmt.Fprintf(out, "  order by: %v\n", doc.OrderBy)
	}
	if doc.Limit != nil {
		fmt.Fprintf(out, "  limit: %d\n", *doc.Limit)
	}
}
