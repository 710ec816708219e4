package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/bookprep/backend/internal/objectid"
)

// MockClient serves canned responses for local development and tests. Each
// job reports pending for a configurable number of polls before succeeding,
// so poller behavior can be exercised without a network.
type MockClient struct {
	Response     string
	PendingPolls int

	mu    sync.Mutex
	polls map[string]int
}

func NewMockClient(response string) *MockClient {
	return &MockClient{
		Response: response,
		polls:    make(map[string]int),
	}
}

func (m *MockClient) Submit(ctx context.Context, content, instructions string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty content")
	}
	jobID := objectid.New()
	m.mu.Lock()
	m.polls[jobID] = 0
	m.mu.Unlock()
	return jobID, nil
}

func (m *MockClient) Poll(ctx context.Context, jobID string) (*JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.polls[jobID]
	if !ok {
		return nil, fmt.Errorf("unknown job id %s", jobID)
	}
	m.polls[jobID] = n + 1
	if n < m.PendingPolls {
		return &JobStatus{State: StatePending}, nil
	}
	return &JobStatus{State: StateSuccess}, nil
}

func (m *MockClient) FetchResult(ctx context.Context, jobID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.polls[jobID]; !ok {
		return "", fmt.Errorf("unknown job id %s", jobID)
	}
	return m.Response, nil
}
