package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"bhutantours/config"
	"bhutantours/database"
	bookingRepoPkg "bhutantours/database/repository/booking"
	"bhutantours/services/auth"
	"bhutantours/services/booking"
	"bhutantours/services/encryption"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "toursctl",
		Short:         "Operational tooling for the Bhutan Tours API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newGenKeyCmd(), newHashPasswordCmd(), newRotateKeyCmd())
	return root
}

// gen-key prints a fresh ENCRYPTION_KEY.
func newGenKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-key",
		Short: "Generate a 64 hex character ENCRYPTION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := encryption.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

// hash-password prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.VerifyPasswordComplexity(args[0]); err != nil {
				return err
			}
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newRotateKeyCmd() *cobra.Command {
	var (
		oldKey  string
		dryRun  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "rotate-key",
		Short: "Re-seal booking details from --old-key to the configured ENCRYPTION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadConfig()
			prev, next, err := rotationCiphers(oldKey, config.AppConfig.EncryptionKey)
			if err != nil {
				return err
			}

			database.InitDB()
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			defer database.Close(context.Background())

			store := booking.RotationStore{Bookings: bookingRepoPkg.NewMongoBookingRepo()}
			report, err := encryption.Rotate(ctx, store, prev, next, dryRun)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report, dryRun)
		},
	}
	cmd.Flags().StringVar(&oldKey, "old-key", "", "previous ENCRYPTION_KEY (64 hex characters)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall time limit")
	_ = cmd.MarkFlagRequired("old-key")
	return cmd
}

func rotationCiphers(oldRaw, newRaw string) (*encryption.Cipher, *encryption.Cipher, error) {
	oldKey, err := config.ParseEncryptionKey(oldRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("--old-key: %w", err)
	}
	newKey, err := config.ParseEncryptionKey(newRaw)
	if err != nil {
		return nil, nil, err
	}
	prev, err := encryption.NewCipher(oldKey)
	if err != nil {
		return nil, nil, err
	}
	next, err := encryption.NewCipher(newKey)
	if err != nil {
		return nil, nil, err
	}
	if prev.KeyID() == next.KeyID() {
		return nil, nil, fmt.Errorf("--old-key matches ENCRYPTION_KEY; nothing to rotate")
	}
	return prev, next, nil
}

func printReport(w io.Writer, report encryption.RotationReport, dryRun bool) error {
	out := struct {
		DryRun bool `json:"dryRun"`
		encryption.RotationReport
	}{dryRun, report}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d record(s) could not be rotated", report.Failed)
	}
	return nil
}
