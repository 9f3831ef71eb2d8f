package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func setupRefreshWorker() (*RefreshWorker, *testutil.MockProjectRepository, *testutil.MockInvoiceRepository, *testutil.MockWorkspaceRepository, *testutil.MockEventPublisher) {
	outstanding, projectRepo, invoiceRepo := setupOutstandingService()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	publisher := testutil.NewMockEventPublisher()

	worker := NewRefreshWorker(outstanding, workspaceRepo, publisher, zerolog.Nop(), RefreshWorkerConfig{
		Interval: 100 * time.Millisecond,
	})
	return worker, projectRepo, invoiceRepo, workspaceRepo, publisher
}

func TestRefreshWorker_NewRefreshWorker(t *testing.T) {
	worker, _, _, _, _ := setupRefreshWorker()

	assert.Equal(t, 100*time.Millisecond, worker.interval)
	assert.False(t, worker.IsRunning())
}

func TestRefreshWorker_DefaultConfig(t *testing.T) {
	assert.Equal(t, 15*time.Minute, DefaultRefreshWorkerConfig().Interval)

	outstanding, _, _ := setupOutstandingService()
	worker := NewRefreshWorker(outstanding, testutil.NewMockWorkspaceRepository(), nil, zerolog.Nop(), RefreshWorkerConfig{})
	assert.Equal(t, 15*time.Minute, worker.interval)
}

func TestRefreshWorker_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	worker, _, _, workspaceRepo, _ := setupRefreshWorker()
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 1, Name: "Northside Plumbing"}, "auth0|ops")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestRefreshWorker_StopWithoutStart(t *testing.T) {
	worker, _, _, _, _ := setupRefreshWorker()

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestRefreshWorker_ContextCancelEndsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	worker, _, _, _, _ := setupRefreshWorker()
	ctx, cancel := context.WithCancel(context.Background())

	worker.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestRefreshWorker_RefreshWorkspace_PublishesOnChange(t *testing.T) {
	worker, projectRepo, invoiceRepo, _, publisher := setupRefreshWorker()
	projectRepo.AddProject(completedProject("P1", 1000, domain.FinancialStatusUnset))

	changed, err := worker.RefreshWorkspace(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, changed, "first observation is a baseline")
	assert.Empty(t, publisher.GetEvents())

	changed, err = worker.RefreshWorkspace(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, changed)

	invoiceRepo.AddInvoice(invoice("I1", "P1", domain.InvoiceStatusOverdue, "400"))

	changed, err = worker.RefreshWorkspace(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, changed)

	events := publisher.GetEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "outstanding.refreshed", events[0].Event.Type)
	payload := events[0].Event.Payload.(map[string]interface{})
	assert.Equal(t, "400.00", payload["grandTotal"])
	assert.Equal(t, "1000.00", payload["previousGrandTotal"])
	assert.Equal(t, 1, payload["projectCount"])
}

func TestRefreshWorker_RefreshAll(t *testing.T) {
	worker, projectRepo, _, workspaceRepo, _ := setupRefreshWorker()
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 1, Name: "Northside Plumbing"}, "")
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 2, Name: "Eastgate Electrical"}, "")
	projectRepo.AddProject(completedProject("P1", 1000, domain.FinancialStatusUnset))

	stats := worker.RefreshAll(context.Background())
	assert.Equal(t, RefreshStats{Workspaces: 2}, stats)

	projectRepo.AddProject(completedProject("P2", 50, domain.FinancialStatusUnset))

	stats = worker.RefreshAll(context.Background())
	assert.Equal(t, RefreshStats{Workspaces: 2, Changed: 1}, stats)
}

func TestRefreshWorker_RefreshAll_Errors(t *testing.T) {
	worker, projectRepo, _, workspaceRepo, publisher := setupRefreshWorker()
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 1, Name: "Northside Plumbing"}, "")
	projectRepo.GetErr = errors.New("connection refused")

	stats := worker.RefreshAll(context.Background())
	assert.Equal(t, RefreshStats{Workspaces: 1, Errors: 1}, stats)
	assert.Empty(t, publisher.GetEvents())

	workspaceRepo.ListErr = errors.New("connection refused")
	stats = worker.RefreshAll(context.Background())
	assert.Equal(t, RefreshStats{Errors: 1}, stats)
}

func TestRefreshWorker_RefreshWorkspace_DiscardsSupersededResult(t *testing.T) {
	worker, projectRepo, invoiceRepo, _, publisher := setupRefreshWorker()
	projectRepo.AddProject(completedProject("P1", 1000, domain.FinancialStatusUnset))

	_, err := worker.RefreshWorkspace(context.Background(), 1)
	require.NoError(t, err)

	invoiceRepo.AddInvoice(invoice("I1", "P1", domain.InvoiceStatusOverdue, "400"))
	projectRepo.Delay = 100 * time.Millisecond

	type result struct {
		changed bool
		err     error
	}
	firstDone := make(chan result, 1)
	go func() {
		changed, err := worker.RefreshWorkspace(context.Background(), 1)
		firstDone <- result{changed, err}
	}()

	time.Sleep(20 * time.Millisecond)
	changed, err := worker.RefreshWorkspace(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, changed)

	first := <-firstDone
	require.NoError(t, first.err)
	assert.False(t, first.changed, "older computation must be discarded")
	assert.Len(t, publisher.GetEvents(), 1)
}

func TestRefreshWorker_RestartAfterContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	worker, _, _, workspaceRepo, _ := setupRefreshWorker()
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 1, Name: "Northside Plumbing"}, "")

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()
	require.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 10*time.Millisecond)

	worker.Start(context.Background())
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
	worker.Stop()
}

func TestRefreshWorker_RestartAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	worker, projectRepo, _, workspaceRepo, _ := setupRefreshWorker()
	workspaceRepo.AddWorkspace(&domain.Workspace{ID: 1, Name: "Northside Plumbing"}, "")
	projectRepo.AddProject(completedProject("P1", 1000, domain.FinancialStatusUnset))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		worker.Start(ctx)
		assert.True(t, worker.IsRunning())
		assert.Eventually(t, func() bool { return projectRepo.Calls() > i }, time.Second, 10*time.Millisecond)
		worker.Stop()
		assert.False(t, worker.IsRunning())
	}
}

func TestRefreshWorker_ConcurrentStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	worker, _, _, _, _ := setupRefreshWorker()
	worker.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Stop()
		}()
	}
	wg.Wait()

	assert.False(t, worker.IsRunning())
}
