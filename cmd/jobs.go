package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ronit-gandhi/meal-shame-tracker/services"
	"github.com/spf13/cobra"
)

var digestDryRun bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload a CSV snapshot of every entry to S3",
	RunE:  runExport,
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send today's digest email",
	Long: `Send today's leaderboard and goal check to DIGEST_RECIPIENTS via SES.

With --dry-run the digest is printed instead and SES is not needed.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().BoolVar(&digestDryRun, "dry-run", false, "print the digest instead of sending it")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	if a.export == nil {
		return errors.New("export needs S3_BUCKET")
	}
	res, err := a.export.Export(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

func runDigest(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	if digestDryRun {
		_, body, _ := services.NewDigestService(a.meals, nil, nil, a.log).Compose(cmd.Context())
		fmt.Fprint(cmd.OutOrStdout(), body)
		return nil
	}
	if a.digest == nil {
		return errors.New("digest needs SES_EMAIL")
	}
	res, err := a.digest.Send(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
