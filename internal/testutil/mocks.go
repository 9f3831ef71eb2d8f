package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/websocket"
)

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces map[int32]*domain.Workspace
	Members    map[string]int32 // auth0ID -> workspaceID
	ListErr    error
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces: make(map[int32]*domain.Workspace),
		Members:    make(map[string]int32),
	}
}

// GetByID retrieves a workspace by ID
func (m *MockWorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	if ws, ok := m.Workspaces[id]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetByMemberAuth0ID retrieves the workspace an Auth0 user belongs to
func (m *MockWorkspaceRepository) GetByMemberAuth0ID(auth0ID string) (*domain.Workspace, error) {
	id, ok := m.Members[auth0ID]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return m.GetByID(id)
}

// GetAllWorkspaces returns all workspaces ordered by ID
func (m *MockWorkspaceRepository) GetAllWorkspaces() ([]*domain.Workspace, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := make([]*domain.Workspace, 0, len(m.Workspaces))
	for _, ws := range m.Workspaces {
		result = append(result, ws)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddWorkspace adds a workspace and optionally a member to the mock
func (m *MockWorkspaceRepository) AddWorkspace(ws *domain.Workspace, auth0ID string) {
	m.Workspaces[ws.ID] = ws
	if auth0ID != "" {
		m.Members[auth0ID] = ws.ID
	}
}

// MockProjectRepository is a mock implementation of domain.ProjectRepository
type MockProjectRepository struct {
	mu          sync.Mutex
	Projects    []*domain.Project
	GetErr      error
	StatusCalls int
	// Delay simulates a slow fetch so tests can observe ordering and cancellation
	Delay time.Duration
}

// NewMockProjectRepository creates a new MockProjectRepository
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{}
}

// AddProject adds a project to the mock
func (m *MockProjectRepository) AddProject(p *domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Projects = append(m.Projects, p)
}

// SetProjects replaces the mock's projects
func (m *MockProjectRepository) SetProjects(projects []*domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Projects = projects
}

// GetByID retrieves a project by ID within a workspace
func (m *MockProjectRepository) GetByID(ctx context.Context, workspaceID int32, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, p := range m.Projects {
		if p.WorkspaceID == workspaceID && p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

// Calls returns how many GetByStatus calls reached the repository
func (m *MockProjectRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StatusCalls
}

// GetByStatus returns projects in the given status
func (m *MockProjectRepository) GetByStatus(ctx context.Context, workspaceID int32, status domain.ProjectStatus, excludeDeleted bool) ([]*domain.Project, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	result := make([]*domain.Project, 0)
	for _, p := range m.Projects {
		if p.WorkspaceID != workspaceID || p.Status != status {
			continue
		}
		if excludeDeleted && p.IsDeleted() {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// MockInvoiceRepository is a mock implementation of domain.InvoiceRepository
type MockInvoiceRepository struct {
	mu        sync.Mutex
	Invoices  map[string]*domain.Invoice
	order     []string
	GetErr    error
	UpsertErr error
	Delay     time.Duration
}

// NewMockInvoiceRepository creates a new MockInvoiceRepository
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{Invoices: make(map[string]*domain.Invoice)}
}

func invoiceKey(workspaceID int32, id string) string {
	return fmt.Sprintf("%d:%s", workspaceID, id)
}

// AddInvoice adds an invoice to the mock
func (m *MockInvoiceRepository) AddInvoice(inv *domain.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(inv)
}

func (m *MockInvoiceRepository) put(inv *domain.Invoice) {
	key := invoiceKey(inv.WorkspaceID, inv.ID)
	if _, ok := m.Invoices[key]; !ok {
		m.order = append(m.order, key)
	}
	m.Invoices[key] = inv
}

// GetAllByWorkspace returns all invoices in insertion order
func (m *MockInvoiceRepository) GetAllByWorkspace(ctx context.Context, workspaceID int32) ([]*domain.Invoice, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	result := make([]*domain.Invoice, 0)
	for _, key := range m.order {
		if inv := m.Invoices[key]; inv.WorkspaceID == workspaceID {
			result = append(result, inv)
		}
	}
	return result, nil
}

// GetByProject returns invoices linked to a project
func (m *MockInvoiceRepository) GetByProject(ctx context.Context, workspaceID int32, projectID string) ([]*domain.Invoice, error) {
	all, err := m.GetAllByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Invoice, 0)
	for _, inv := range all {
		if inv.ProjectID == projectID {
			result = append(result, inv)
		}
	}
	return result, nil
}

// UpsertBatch inserts or replaces invoices
func (m *MockInvoiceRepository) UpsertBatch(ctx context.Context, workspaceID int32, invoices []*domain.Invoice) ([]*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	now := time.Now().UTC()
	for _, inv := range invoices {
		inv.WorkspaceID = workspaceID
		inv.UpdatedAt = now
		m.put(inv)
	}
	return invoices, nil
}

// MockReportRepository is an in-memory storage.ReportRepository
type MockReportRepository struct {
	mu         sync.Mutex
	Objects    map[string][]byte
	UploadErr  error
	PresignErr error
}

// NewMockReportRepository creates a new MockReportRepository
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockReportRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	return objectPath, nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockReportRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	return fmt.Sprintf("https://reports.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

// GetEvents returns a copy of the recorded events
func (m *MockEventPublisher) GetEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
