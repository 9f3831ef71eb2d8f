package service

import (
	"sort"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BalancePolicy holds the business rules used to resolve outstanding balances.
// It is built once from configuration and passed in, never read from globals.
type BalancePolicy struct {
	TerminalStatuses          map[domain.FinancialStatus]bool
	FallbackStatuses          map[domain.FinancialStatus]bool
	QualifyingInvoiceStatuses map[domain.InvoiceStatus]bool
	// ValueFallback enables using the contract value for projects with no invoices at all
	ValueFallback bool
}

// DefaultBalancePolicy returns the standard receivables rules
func DefaultBalancePolicy() BalancePolicy {
	return BalancePolicy{
		TerminalStatuses: map[domain.FinancialStatus]bool{
			domain.FinancialStatusBalancePaidInFull: true,
			domain.FinancialStatusWrittenOff:        true,
			domain.FinancialStatusCancelled:         true,
		},
		FallbackStatuses: map[domain.FinancialStatus]bool{
			domain.FinancialStatusUnset:              true,
			domain.FinancialStatusAwaitingPayment:    true,
			domain.FinancialStatusInitialPaymentMade: true,
			domain.FinancialStatusSecondPaymentMade:  true,
		},
		QualifyingInvoiceStatuses: map[domain.InvoiceStatus]bool{
			domain.InvoiceStatusSubmitted:  true,
			domain.InvoiceStatusAuthorised: true,
			domain.InvoiceStatusOverdue:    true,
		},
		ValueFallback: true,
	}
}

// IsQualifying reports whether an invoice counts toward a project's balance
func (p BalancePolicy) IsQualifying(inv *domain.Invoice) bool {
	return p.QualifyingInvoiceStatuses[domain.NormalizeInvoiceStatus(string(inv.Status))] &&
		inv.AmountDue.GreaterThan(decimal.Zero)
}

// IsEligible reports whether a project can carry an outstanding balance at all:
// completed, positive value and not soft-deleted
func IsEligible(p *domain.Project) bool {
	return p.Status == domain.ProjectStatusCompleted &&
		p.TotalProjectValue.GreaterThan(decimal.Zero) &&
		!p.IsDeleted()
}

// ResolveOutstanding joins projects to their invoices and returns the projects that
// still have money owed, highest balance first. Inputs are not modified.
func ResolveOutstanding(projects []*domain.Project, invoices []*domain.Invoice, policy BalancePolicy) ([]*domain.ProjectBalance, decimal.Decimal) {
	byProject := make(map[string][]*domain.Invoice)
	for _, inv := range invoices {
		if inv == nil || inv.ProjectID == "" {
			continue
		}
		byProject[inv.ProjectID] = append(byProject[inv.ProjectID], inv)
	}

	balances := make([]*domain.ProjectBalance, 0)
	seen := make(map[string]bool, len(projects))
	total := decimal.Zero

	for _, project := range projects {
		if project == nil || seen[project.ID] || !IsEligible(project) {
			continue
		}
		seen[project.ID] = true

		b := resolveProject(project, byProject[project.ID], policy)
		if b == nil {
			continue
		}
		balances = append(balances, b)
		total = total.Add(b.OutstandingBalance)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		if cmp := balances[i].OutstandingBalance.Cmp(balances[j].OutstandingBalance); cmp != 0 {
			return cmp > 0
		}
		return balances[i].Project.ID < balances[j].Project.ID
	})

	return balances, total
}

func resolveProject(project *domain.Project, invoices []*domain.Invoice, policy BalancePolicy) *domain.ProjectBalance {
	if policy.TerminalStatuses[project.FinancialStatus] {
		return nil
	}

	owed := decimal.Zero
	qualifying := 0
	for _, inv := range invoices {
		if policy.IsQualifying(inv) {
			owed = owed.Add(inv.AmountDue)
			qualifying++
		}
	}

	b := &domain.ProjectBalance{
		Project:            project,
		QualifyingInvoices: qualifying,
		InvoiceCount:       len(invoices),
	}

	switch {
	case qualifying > 0:
		b.OutstandingBalance = owed
		b.Source = domain.BalanceSourceInvoices
	// Any invoice row, even a paid one, suppresses the contract value fallback
	case len(invoices) == 0 && policy.ValueFallback && policy.FallbackStatuses[project.FinancialStatus]:
		b.OutstandingBalance = project.TotalProjectValue
		b.Source = domain.BalanceSourceProjectValue
	default:
		return nil
	}

	if b.OutstandingBalance.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	return b
}
