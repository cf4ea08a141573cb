package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "meal-shame",
	Short: "Meal Shame Tracker backend",
	Long: `Log meals, roast each other, and compare intake against goals.

Commands:
  serve  - Run the HTTP API, live feed and scheduled digest
  export - Upload a CSV snapshot of every entry to S3
  digest - Send (or print) today's digest email`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd, digestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
