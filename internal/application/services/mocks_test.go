package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/repositories"
)

// Mocks

type MockPolicyDocumentRepository struct {
	mock.Mock
}

func (m *MockPolicyDocumentRepository) Create(ctx context.Context, doc *entities.PolicyDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockPolicyDocumentRepository) GetByID(ctx context.Context, id string) (*entities.PolicyDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PolicyDocument), args.Error(1)
}

func (m *MockPolicyDocumentRepository) Update(ctx context.Context, doc *entities.PolicyDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockPolicyDocumentRepository) List(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.PolicyDocument, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PolicyDocument), args.Error(1)
}

type MockInsurancePolicyRepository struct {
	mock.Mock
}

func (m *MockInsurancePolicyRepository) Create(ctx context.Context, policy *entities.InsurancePolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockInsurancePolicyRepository) GetByID(ctx context.Context, id string) (*entities.InsurancePolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InsurancePolicy), args.Error(1)
}

func (m *MockInsurancePolicyRepository) GetByDocumentID(ctx context.Context, documentID string) ([]*entities.InsurancePolicy, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InsurancePolicy), args.Error(1)
}

type MockRedFlagRepository struct {
	mock.Mock
}

func (m *MockRedFlagRepository) CreateBatch(ctx context.Context, flags []*entities.RedFlag) error {
	args := m.Called(ctx, flags)
	return args.Error(0)
}

func (m *MockRedFlagRepository) ListByPolicy(ctx context.Context, policyID string) ([]*entities.RedFlag, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RedFlag), args.Error(1)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, path, mimeType string) (*entities.ExtractedText, error) {
	args := m.Called(ctx, path, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ExtractedText), args.Error(1)
}

type MockExtractionProvider struct {
	mock.Mock
}

func (m *MockExtractionProvider) ExtractPolicyFields(ctx context.Context, rawText string, fields []string) (*providers.AIExtractionResult, error) {
	args := m.Called(ctx, rawText, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.AIExtractionResult), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.DocumentEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DocumentEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.DocumentEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	return nil
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) Authenticate(ctx context.Context, email, password string) (*providers.AuthToken, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.AuthToken), args.Error(1)
}

// Fixtures

const fullPolicyText = `Plan Name: Blue Shield Silver PPO
Plan Type: Health
Policy Number: BSC-2024-7788
Plan Year: 2024
Effective Date: 01/01/2024
Expiration Date: 12/31/2024
Individual Deductible: $1,500
Family Deductible: $3,000
Individual Out-of-Pocket Maximum: $7,000
Family Out-of-Pocket Maximum: $14,000
Monthly Premium: $450
Annual Premium: $5,400
Network Type: PPO
Exclusions: cosmetic surgery.`

const partialPolicyText = `Plan Name: Bright Dental Basic
Plan Type: Dental
Individual Deductible: $50
Family Deductible: $150
Monthly Premium: $32.50
Network Type: PPO`

const scenarioOneText = "Annual Premium: $5,000 ... Annual Deductible: $1,500 ... Out-of-Pocket Maximum: $7,000"
