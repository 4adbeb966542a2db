// Package cli is the facturatie command tree: the HTTP server, database
// migrations, and offline calculators for invoices, cash counts and reminders.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"facturatie/internal/app"
	"facturatie/internal/config"
	"facturatie/internal/logger"
	"facturatie/internal/prefs"
	"facturatie/internal/rates"
	"facturatie/internal/reminder"
)

var version = "1.0.0"

// NewRootCommand builds the command tree around a loaded configuration.
func NewRootCommand(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "facturatie",
		Short: "Facturatie - invoice, cash count and reminder engine",
		Long: `Facturatie computes invoice totals, VAT buckets, cash counts and payment
reminder stages for Surinamese businesses, and fronts the boekhouding backend
with an authenticated HTTP API.

Run "facturatie serve" for the API, or use the calculators directly:
  facturatie totals --file regels.json --currency SRD
  facturatie cash --eur 38.50 --usd 35.50 < telling.json
  facturatie stage --due 2026-09-01
  facturatie format 1234.5 --currency EUR`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(cfg),
		newMigrateCmd(cfg),
		newTotalsCmd(cfg),
		newCashCmd(cfg),
		newStageCmd(cfg),
		newFormatCmd(),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context, cfg config.Config) error {
	log := logger.WithComponent("cmd")

	if err := NewRootCommand(cfg).ExecuteContext(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		return err
	}
	return nil
}

// localService wires the application service for offline commands: no
// backend, configured fallback rates and an in-memory reminder log.
func localService(cfg config.Config) app.ApplicationService {
	return app.NewAppService(app.Deps{
		Rates:       rates.NewProvider(nil, nil, cfg.RatesCacheTTL, cfg.Business.FallbackRates),
		Reminders:   reminder.NewPlanner(cfg.Business.Reminders, reminder.NewMemoryLog()),
		Prefs:       prefs.NewService(prefs.NewMemoryStore(nil), nil),
		Accounts:    cfg.Business.Accounts,
		StrictInput: cfg.StrictNumericInput,
	})
}
