package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"facturatie/internal/app"
	"facturatie/internal/config"
	"facturatie/internal/core"
)

// readInput returns the contents of path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func newTotalsCmd(cfg config.Config) *cobra.Command {
	var file, currency string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Compute invoice totals and the VAT breakdown",
		Long: `Compute subtotal, VAT per percentage and total of a list of invoice lines.

The input is a JSON array of lines read from --file or stdin:
  [{"description":"Consult","quantity":2,"unit_price":100,"vat_percentage":10}]

Example:
  facturatie totals --file regels.json --currency USD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			res, err := localService(cfg).CalculateInvoice(cmd.Context(), app.CalculateInvoiceRequest{
				Currency: currency,
				Lines:    json.RawMessage(raw),
			})
			if err != nil {
				return err
			}
			for _, issue := range res.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s, counted as 0\n", issue.Error())
			}
			printSummary(cmd.OutOrStdout(), res.Summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with invoice lines (default stdin)")
	cmd.Flags().StringVarP(&currency, "currency", "c", string(core.BaseCurrency), "Invoice currency (SRD, EUR, USD)")
	return cmd
}

func printSummary(w io.Writer, s core.InvoiceSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 48))
	fmt.Fprintf(w, "  %-44s\n", "INVOICE TOTALS")
	fmt.Fprintf(w, "  Currency : %s\n", s.Currency)
	fmt.Fprintf(w, "  Lines    : %d\n", len(s.Lines))
	fmt.Fprintln(w, strings.Repeat("=", 48))
	fmt.Fprintf(w, "  %-8s %18s %18s\n", "BTW %", "BASE", "BTW")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	for _, b := range s.VAT {
		fmt.Fprintf(w, "  %-8s %18s %18s\n", b.Percentage.String(),
			core.FormatMoney(b.BaseAmount, s.Currency), core.FormatMoney(b.VATAmount, s.Currency))
	}
	fmt.Fprintln(w, strings.Repeat("-", 48))
	fmt.Fprintf(w, "  %-27s %18s\n", "Subtotal", s.Formatted.Subtotal)
	fmt.Fprintf(w, "  %-27s %18s\n", "BTW", s.Formatted.VATTotal)
	fmt.Fprintf(w, "  %-27s %18s\n", "Total", s.Formatted.Total)
	fmt.Fprintln(w, strings.Repeat("=", 48))
}

func newCashCmd(cfg config.Config) *cobra.Command {
	var file, eur, usd string

	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Total a cash count (dagstaat) in SRD",
		Long: `Total the banknotes counted per currency and convert them to SRD.

The input maps currency to face value to number of notes:
  {"SRD":{"100":5,"20":3},"EUR":{"50":1},"USD":{"20":2}}

Rates default to the configured fallback rates.

Example:
  facturatie cash --eur 38.50 --usd 35.50 < telling.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var req app.CountCashRequest
			if err := json.Unmarshal(raw, &req.Counts); err != nil {
				return fmt.Errorf("%w: %v", core.ErrInvalidShape, err)
			}

			if eur != "" || usd != "" {
				set := cfg.Business.FallbackRates
				if eur != "" {
					if set.EURToSRD, err = core.ParseDecimal(eur); err != nil {
						return fmt.Errorf("--eur: %w", err)
					}
				}
				if usd != "" {
					if set.USDToSRD, err = core.ParseDecimal(usd); err != nil {
						return fmt.Errorf("--usd: %w", err)
					}
				}
				req.Rates = &set
			}

			res, err := localService(cfg).CountCash(cmd.Context(), "", req)
			if err != nil {
				return err
			}
			printCash(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the count (default stdin)")
	cmd.Flags().StringVar(&eur, "eur", "", "EUR to SRD rate")
	cmd.Flags().StringVar(&usd, "usd", "", "USD to SRD rate")
	return cmd
}

func printCash(w io.Writer, res *app.CashResult) {
	t := res.Totals
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 48))
	fmt.Fprintf(w, "  %-44s\n", "CASH COUNT")
	fmt.Fprintf(w, "  Rates    : EUR %s / USD %s (%s)\n", t.Rates.EURToSRD.String(), t.Rates.USDToSRD.String(), res.RateSource)
	fmt.Fprintln(w, strings.Repeat("=", 48))
	fmt.Fprintf(w, "  %-27s %18s\n", "SRD", res.Formatted.SRD)
	fmt.Fprintf(w, "  %-27s %18s\n", "EUR", res.Formatted.EUR)
	fmt.Fprintf(w, "  %-27s %18s\n", "USD", res.Formatted.USD)
	fmt.Fprintln(w, strings.Repeat("-", 48))
	fmt.Fprintf(w, "  %-27s %18s\n", "Total in SRD", res.Formatted.TotalInSRD)
	fmt.Fprintln(w, strings.Repeat("=", 48))
}

func newStageCmd(cfg config.Config) *cobra.Command {
	var due, today string

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Show the reminder stage of an invoice",
		Long: `Show how far an unpaid invoice has escalated, using the configured
reminder thresholds.

Example:
  facturatie stage --due 2026-09-01 --today 2026-10-15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := localService(cfg).ReminderStage(cmd.Context(), app.ReminderStageRequest{
				DueDate: due,
				Today:   today,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Stage == core.StageNotDue {
				fmt.Fprintf(out, "Stage 0: no reminder due (%d days overdue).\n", res.DaysOverdue)
				return nil
			}
			fmt.Fprintf(out, "Stage %d: %s (%d days overdue).\n", res.Stage, res.Kind, res.DaysOverdue)
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&today, "today", "", "Reference date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newFormatCmd() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "format <amount>",
		Short: "Format an amount the way invoices show it",
		Example: `  facturatie format 1234.5 --currency EUR
  facturatie format -- -12,5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := core.ParseCurrency(currency)
			if err != nil {
				return err
			}
			amount, err := core.ParseDecimal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), core.FormatMoney(amount, cur))
			return nil
		},
	}
	cmd.Flags().StringVarP(&currency, "currency", "c", string(core.BaseCurrency), "Currency (SRD, EUR, USD)")
	return cmd
}
