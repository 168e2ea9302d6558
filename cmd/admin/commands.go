package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"finlink/internal/domain/account"
	"finlink/internal/domain/transaction"
	"finlink/internal/infrastructure/database"
	httphandlers "finlink/internal/interfaces/http"
	"finlink/internal/shared/auth"
	"finlink/internal/shared/config"
	"finlink/internal/shared/logger"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	cfg    *config.Config
	output string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "admin",
		Short:        "Operational commands for the finlink API",
		Long:         `Inspect bank accounts and transactions as a given user would see them, apply the schema, and mint tokens for testing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != "json" && a.output != "yaml" {
				return fmt.Errorf("unsupported output format %q (want json or yaml)", a.output)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// diagnostics and authorization audit events go to stderr so
			// they never mix with rendered output
			if _, err := logger.Init(logger.Options{
				Level:   cfg.Log.Level,
				Format:  cfg.Log.Format,
				Service: "finlink-admin",
				Output:  cmd.ErrOrStderr(),
			}); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "Output format (json or yaml)")

	root.AddCommand(
		a.migrateCmd(),
		a.accountsCmd(),
		a.balanceCmd(),
		a.balancesCmd(),
		a.transactionsCmd(),
		a.tokenCmd(),
	)

	return root
}

// withDB opens the configured database for the duration of fn, applying the
// schema first when DB_MIGRATE is set.
func (a *app) withDB(ctx context.Context, fn func(*database.DB) error) error {
	db, err := database.Open(a.cfg.Database.Driver, a.cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if a.cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}
	return fn(db)
}

func (a *app) accountService(db *database.DB) *account.Service {
	return account.NewService(database.NewAccountStore(db), account.Policy{
		BalanceRequiresActive: a.cfg.Policy.BalanceRequiresActive,
		ListRequiresActive:    a.cfg.Policy.ListRequiresActive,
	})
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes the read paths depend on",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd.Context(), func(db *database.DB) error {
				if err := db.Migrate(cmd.Context()); err != nil {
					return err
				}
				log.Info().Str("driver", a.cfg.Database.Driver).Msg("schema applied")
				return nil
			})
		},
	}
}

func (a *app) accountsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the bank accounts a user can see",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd.Context(), func(db *database.DB) error {
				accounts, err := a.accountService(db).ListAccounts(cmd.Context(), userID)
				if err != nil {
					return err
				}
				out := make([]httphandlers.AccountResponse, 0, len(accounts))
				for _, acc := range accounts {
					out = append(out, httphandlers.ToAccountResponse(acc))
				}
				return render(cmd.OutOrStdout(), a.output, out)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to act as")
	cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) balanceCmd() *cobra.Command {
	var userID, currency string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a user's consolidated balance in one currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd.Context(), func(db *database.DB) error {
				balance, err := a.accountService(db).ConsolidatedBalance(cmd.Context(), userID, currency)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, httphandlers.ToConsolidatedBalanceResponse(balance))
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to act as")
	cmd.Flags().StringVar(&currency, "currency", account.DefaultCurrency, "ISO 4217 currency code")
	cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) transactionsCmd() *cobra.Command {
	var userID, accountID string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show one page of an account's transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd.Context(), func(db *database.DB) error {
				svc := transaction.NewService(database.NewTransactionStore(db))
				result, err := svc.ListTransactions(cmd.Context(), userID, accountID, page, pageSize)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, httphandlers.ToTransactionPageResponse(result))
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to act as")
	cmd.Flags().StringVar(&accountID, "account", "", "Bank account ID")
	cmd.Flags().IntVar(&page, "page", transaction.FirstPage, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", transaction.DefaultPageSize, "Transactions per page")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("account")
	return cmd
}

type tokenOutput struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

func (a *app) tokenCmd() *cobra.Command {
	var userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", ttl)
			}
			if err := a.cfg.JWT.Validate(); err != nil {
				return err
			}
			jwt := auth.NewJWT(a.cfg.JWT.Secret, a.cfg.JWT.Issuer)
			token, err := jwt.Generate(userID, ttl)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output, tokenOutput{
				Token:     token,
				UserID:    userID,
				ExpiresAt: time.Now().Add(ttl).UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}

// render writes v as indented JSON or as YAML. YAML keys follow the json tags.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
