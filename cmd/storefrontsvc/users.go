package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mkrupp/storefront/internal/domain"
)

func newUsersCmd(cfg *Config) *cobra.Command {
	var email, phoneNumber string

	//nolint:exhaustruct
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Print the registered accounts as JSON, without passwords",
		Long: "Print the registered accounts as JSON, without passwords.\n" +
			"With --email or --phone only the matching account is printed; email wins if both are given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svcs, err := newServices(ctx, *cfg)
			if err != nil {
				return err
			}
			defer svcs.close(ctx)

			if email == "" && phoneNumber == "" {
				users, err := svcs.auth.ListUsers(ctx)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}

				return printJSON(cmd.OutOrStdout(), users)
			}

			user, found, err := svcs.auth.GetUserByCredentials(ctx, email, phoneNumber)
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}

			if !found {
				return domain.ErrUserNotFound
			}

			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "only print the account with this email address")
	cmd.Flags().StringVar(&phoneNumber, "phone", "", "only print the account with this phone number")

	return cmd
}

func newRecordsCmd(cfg *Config) *cobra.Command {
	var prefix string

	//nolint:exhaustruct
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the keys held in the record store with their value sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svcs, err := newServices(ctx, *cfg)
			if err != nil {
				return err
			}
			defer svcs.close(ctx)

			keys, err := svcs.store.Keys(ctx, prefix)
			if err != nil {
				return fmt.Errorf("list keys: %w", err)
			}

			for _, key := range keys {
				value, _, err := svcs.store.Get(ctx, key)
				if err != nil {
					return fmt.Errorf("get %s: %w", key, err)
				}

				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", key, len(value)); err != nil {
					return fmt.Errorf("write: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only list keys starting with prefix")

	return cmd
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	return nil
}
