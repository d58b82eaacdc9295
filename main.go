package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/logger"
)

var rootCmd = &cobra.Command{
	Use:   "homedash",
	Short: "Household dashboard backend",
	Long:  `Serves the homedash API (sales, car loans, stocks, board, calendar) and offers admin and reporting commands over the same database.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		if cmd.Name() == serveCmd.Name() {
			logger.InitLogger(config.Cfg.LogLevel)
			return
		}
		// Keep stdout clean for command output.
		logger.InitLoggerWithWriter(os.Stderr, config.Cfg.LogLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
