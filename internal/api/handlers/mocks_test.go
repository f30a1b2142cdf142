package handlers_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
)

type MockDocumentWorkflow struct {
	mock.Mock
}

func (m *MockDocumentWorkflow) Upload(ctx context.Context, in services.UploadInput) (*entities.PolicyDocument, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PolicyDocument), args.Error(1)
}

func (m *MockDocumentWorkflow) Get(ctx context.Context, id string) (*entities.PolicyDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PolicyDocument), args.Error(1)
}

func (m *MockDocumentWorkflow) Process(ctx context.Context, documentID string) *entities.ProcessingResult {
	args := m.Called(ctx, documentID)
	return args.Get(0).(*entities.ProcessingResult)
}

func (m *MockDocumentWorkflow) Review(ctx context.Context, documentID string, sub services.ReviewSubmission) *entities.PolicyCreationResult {
	args := m.Called(ctx, documentID, sub)
	return args.Get(0).(*entities.PolicyCreationResult)
}

type MockPolicyReader struct {
	mock.Mock
}

func (m *MockPolicyReader) GetByID(ctx context.Context, id string) (*entities.InsurancePolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InsurancePolicy), args.Error(1)
}

type MockRedFlagReader struct {
	mock.Mock
}

func (m *MockRedFlagReader) ListForPolicy(ctx context.Context, policyID string) ([]entities.CategorizedRedFlag, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.CategorizedRedFlag), args.Error(1)
}

func (m *MockRedFlagReader) Preview(text string) []entities.CategorizedRedFlag {
	args := m.Called(text)
	return args.Get(0).([]entities.CategorizedRedFlag)
}

type MockRedFlagExporter struct {
	mock.Mock
}

func (m *MockRedFlagExporter) ExportPolicyRedFlags(ctx context.Context, policyID string) ([]byte, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*providers.AuthToken, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.AuthToken), args.Error(1)
}

// MockEventBus fans published events out to in-process subscribers.
type MockEventBus struct {
	mu           sync.RWMutex
	subscribers  map[string][]chan *entities.DocumentEvent
	published    []*entities.DocumentEvent
	subscribeErr error
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.DocumentEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.DocumentEvent) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	channels := append([]chan *entities.DocumentEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DocumentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	ch := make(chan *entities.DocumentEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}

func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[channel])
}
