package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "pairindex",
		Short:        "Pool token pair indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", "", "optional .env file loaded before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Fetch pool tokens, store them and serve the token info API",
		RunE:  runServe,
	}

	addSyncFlags(serveCmd)
	serveCmd.Flags().Int("port", 8080, "HTTP listen port")
	serveCmd.Flags().String("symbols", "", "symbol to token address map (comma-separated SYMBOL=address)")

	root.AddCommand(serveCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch pool tokens once and store them",
		RunE:  runFetch,
	}

	addSyncFlags(fetchCmd)
	fetchCmd.Flags().String("out", "", "optional JSONL export path")

	root.AddCommand(fetchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	cmd.Flags().String("db-path", "./data/pairs.db", "SQLite database file")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN, used instead of SQLite when set")
	cmd.Flags().StringSlice("pools", nil, "pools to index (comma-separated name=address)")
	cmd.Flags().Duration("read-timeout", 10*time.Second, "timeout of each storage read, 0 disables it")
	cmd.Flags().Int("concurrency", 1, "pools read in parallel")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-file", "", "write logs to a rotated file instead of stderr")
}
