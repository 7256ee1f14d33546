package main

import (
	"cvewatch/internal/structures"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flags structures.CliFlags

var rootCmd = &cobra.Command{
	Use:   "cvewatch",
	Short: "Mail digests of new and updated CVEs for watched products",
	Long: "cvewatch polls a CVE database on a schedule, keeps the records that mention the\n" +
		"vendors and products of each subscription and mails one digest per recipient.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "also log to the console")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(onceCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}
