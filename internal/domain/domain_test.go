package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeInvoiceStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want InvoiceStatus
	}{
		{"PAID", InvoiceStatusPaid},
		{"authorised", InvoiceStatusAuthorised},
		{"  Overdue\t", InvoiceStatusOverdue},
		{"", InvoiceStatus("")},
		{"on hold", InvoiceStatus("ON HOLD")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeInvoiceStatus(tt.raw))
		})
	}
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	for _, s := range []InvoiceStatus{
		InvoiceStatusDraft, InvoiceStatusSubmitted, InvoiceStatusAuthorised,
		InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusVoided, InvoiceStatusDeleted,
	} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, InvoiceStatus("paid").IsValid())
	assert.False(t, InvoiceStatus("").IsValid())
}

func TestProjectStatus_IsValid(t *testing.T) {
	assert.True(t, ProjectStatusCompleted.IsValid())
	assert.True(t, ProjectStatusQuoteSent.IsValid())
	assert.False(t, ProjectStatus("completed").IsValid())
	assert.False(t, ProjectStatus("").IsValid())
}

func TestProject_IsDeleted(t *testing.T) {
	p := &Project{ID: "P1"}
	assert.False(t, p.IsDeleted())

	now := time.Now()
	p.DeletedAt = &now
	assert.True(t, p.IsDeleted())
}

func TestOutstandingReport_Find(t *testing.T) {
	report := &OutstandingReport{
		Balances: []*ProjectBalance{
			{Project: &Project{ID: "P1"}, OutstandingBalance: decimal.NewFromInt(10)},
			{Project: &Project{ID: "P2"}, OutstandingBalance: decimal.NewFromInt(5)},
		},
	}

	found := report.Find("P2")
	if assert.NotNil(t, found) {
		assert.Equal(t, "5", found.OutstandingBalance.String())
	}
	assert.Nil(t, report.Find("P3"))
	assert.Nil(t, (&OutstandingReport{}).Find("P1"))
}
