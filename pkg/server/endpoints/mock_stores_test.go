package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

// MockLibraryStore implements store.LibraryStore for testing using testify/mock
type MockLibraryStore struct {
	mock.Mock
}

func NewMockLibraryStore() *MockLibraryStore {
	return &MockLibraryStore{}
}

func (m *MockLibraryStore) Search(query string) ([]model.ControlReference, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ControlReference), args.Error(1)
}

func (m *MockLibraryStore) Get(identifier string) (*model.ControlReference, error) {
	args := m.Called(identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ControlReference), args.Error(1)
}

func (m *MockLibraryStore) IsEmpty() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockLibraryStore) Insert(controls []model.ControlReference) error {
	args := m.Called(controls)
	return args.Error(0)
}

// MockAssessmentsStore implements store.AssessmentsStore for testing using testify/mock
type MockAssessmentsStore struct {
	mock.Mock
}

func NewMockAssessmentsStore() *MockAssessmentsStore {
	return &MockAssessmentsStore{}
}

func (m *MockAssessmentsStore) Submit(input store.AssessmentInput) error {
	args := m.Called(input)
	return args.Error(0)
}

func (m *MockAssessmentsStore) Find(refID string, auditYear int) (*model.Assessment, error) {
	args := m.Called(refID, auditYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assessment), args.Error(1)
}

func (m *MockAssessmentsStore) ListAll() ([]model.Assessment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assessment), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAdvisor implements server.Advisor for testing using testify/mock
type MockAdvisor struct {
	mock.Mock
}

func (m *MockAdvisor) Analyze(ctx context.Context, refID string, year int) (string, error) {
	args := m.Called(ctx, refID, year)
	return args.String(0), args.Error(1)
}
