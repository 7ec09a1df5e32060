package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"injuryshield/internal/version"
	"injuryshield/pkg/log"
)

var (
	logLevel   string
	logFile    string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "injuryshield",
	Short: "injuryshield watches cameras for missing PPE",
	Long: `Workplace PPE compliance monitoring: detection, alerting and analytics.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel, logFile)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append logs to this file")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(monitorCommand)
	rootCmd.AddCommand(consumeCommand)
	rootCmd.AddCommand(updateDBCommand)
	rootCmd.AddCommand(toolsCmd)
}
