package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/service"
	"github.com/dafibh/fieldops/fieldops-backend/internal/snapshot"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = lipgloss.NewStyle().Bold(true)
)

type outstandingOptions struct {
	projectsPath    string
	invoicesPath    string
	asJSON          bool
	noValueFallback bool
}

func newOutstandingCmd() *cobra.Command {
	opts := &outstandingOptions{}

	cmd := &cobra.Command{
		Use:   "outstanding",
		Short: "Resolve the outstanding balance report from snapshot files",
		Long: `Resolve the outstanding balance report from JSON exports of projects and invoices.

Both files hold a JSON array using the backend's snake_case keys. Amounts may be
numbers or numeric strings; null or missing fields fall back to their defaults.`,
		Example: `  # Print the ranked table
  fieldops outstanding --projects projects.json --invoices invoices.json

  # Machine readable output, invoice sums only
  fieldops outstanding --projects projects.json --invoices invoices.json --json --no-value-fallback`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutstanding(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.projectsPath, "projects", "", "Path to the projects JSON array")
	cmd.Flags().StringVar(&opts.invoicesPath, "invoices", "", "Path to the invoices JSON array")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&opts.noValueFallback, "no-value-fallback", false, "Do not use the project value for projects without invoices")
	_ = cmd.MarkFlagRequired("projects")
	_ = cmd.MarkFlagRequired("invoices")

	return cmd
}

func runOutstanding(out io.Writer, opts *outstandingOptions) error {
	logger := log.With().Str("component", "outstanding").Logger()

	projects, err := snapshot.LoadProjects(opts.projectsPath)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	invoices, err := snapshot.LoadInvoices(opts.invoicesPath)
	if err != nil {
		return fmt.Errorf("load invoices: %w", err)
	}

	policy := service.DefaultBalancePolicy()
	policy.ValueFallback = !opts.noValueFallback

	balances, total := service.ResolveOutstanding(projects, invoices, policy)

	logger.Debug().
		Int("projects", len(projects)).
		Int("invoices", len(invoices)).
		Int("balances", len(balances)).
		Bool("value_fallback", policy.ValueFallback).
		Msg("Resolved outstanding report")

	if opts.asJSON {
		return writeOutstandingJSON(out, balances, total)
	}
	return writeOutstandingTable(out, balances, total)
}

type outstandingRow struct {
	ProjectID          string     `json:"projectId"`
	ProjectName        string     `json:"projectName"`
	ClientName         string     `json:"clientName"`
	FinancialStatus    string     `json:"financialStatus"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	Source             string     `json:"source"`
	InvoiceCount       int        `json:"invoiceCount"`
	QualifyingInvoices int        `json:"qualifyingInvoices"`
	OutstandingBalance string     `json:"outstandingBalance"`
}

type outstandingOutput struct {
	Balances     []outstandingRow `json:"balances"`
	ProjectCount int              `json:"projectCount"`
	GrandTotal   string           `json:"grandTotal"`
}

func writeOutstandingJSON(out io.Writer, balances []*domain.ProjectBalance, total decimal.Decimal) error {
	result := outstandingOutput{
		Balances:     make([]outstandingRow, 0, len(balances)),
		ProjectCount: len(balances),
		GrandTotal:   total.StringFixed(2),
	}
	for _, b := range balances {
		result.Balances = append(result.Balances, outstandingRow{
			ProjectID:          b.Project.ID,
			ProjectName:        b.Project.Name,
			ClientName:         b.Project.ClientName,
			FinancialStatus:    string(b.Project.FinancialStatus),
			CompletedAt:        b.Project.CompletedAt,
			Source:             string(b.Source),
			InvoiceCount:       b.InvoiceCount,
			QualifyingInvoices: b.QualifyingInvoices,
			OutstandingBalance: b.OutstandingBalance.StringFixed(2),
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeOutstandingTable(out io.Writer, balances []*domain.ProjectBalance, total decimal.Decimal) error {
	if len(balances) == 0 {
		_, err := fmt.Fprintln(out, "No outstanding balances.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PROJECT", "NAME", "CLIENT", "FINANCIAL STATUS", "INVOICES", "SOURCE", "OUTSTANDING").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4 || col == 6:
				return amountStyle
			default:
				return cellStyle
			}
		})

	for _, b := range balances {
		status := string(b.Project.FinancialStatus)
		if status == "" {
			status = "-"
		}
		t.Row(
			b.Project.ID,
			b.Project.Name,
			b.Project.ClientName,
			status,
			strconv.Itoa(b.QualifyingInvoices)+"/"+strconv.Itoa(b.InvoiceCount),
			string(b.Source),
			b.OutstandingBalance.StringFixed(2),
		)
	}

	if _, err := fmt.Fprintln(out, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, totalStyle.Render(fmt.Sprintf("%d projects, %s outstanding", len(balances), total.StringFixed(2))))
	return err
}
