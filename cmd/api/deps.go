package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"finlink/internal/domain/account"
	"finlink/internal/domain/transaction"
	"finlink/internal/infrastructure/database"
	httphandlers "finlink/internal/interfaces/http"
	"finlink/internal/shared/auth"
	"finlink/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *database.DB

	// Handlers
	HealthHandler      *httphandlers.HealthHandler
	AccountHandler     *httphandlers.AccountHandler
	TransactionHandler *httphandlers.TransactionHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	if cfg.Database.Migrate {
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("schema migrated")
	}

	policy := account.Policy{
		BalanceRequiresActive: cfg.Policy.BalanceRequiresActive,
		ListRequiresActive:    cfg.Policy.ListRequiresActive,
	}

	// Initialize domain services
	accountService := account.NewService(database.NewAccountStore(db), policy)
	transactionService := transaction.NewService(database.NewTransactionStore(db))

	return &Dependencies{
		DB:                 db,
		HealthHandler:      httphandlers.NewHealthHandler(db),
		AccountHandler:     httphandlers.NewAccountHandler(accountService),
		TransactionHandler: httphandlers.NewTransactionHandler(transactionService),
		JWT:                auth.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
