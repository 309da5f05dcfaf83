package service

import (
	"context"

	"github.com/helpdock/helpdock/internal/agent"
	"github.com/helpdock/helpdock/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks the domain.Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadThread(ctx context.Context, threadID string) (domain.ThreadMetadata, error) {
	args := m.Called(ctx, threadID)
	return args.Get(0).(domain.ThreadMetadata), args.Error(1)
}

func (m *MockStore) SaveThread(ctx context.Context, thread domain.Thread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

func (m *MockStore) LoadThreads(ctx context.Context, limit int, after string, order domain.SortOrder) (domain.Page[domain.ThreadMetadata], error) {
	args := m.Called(ctx, limit, after, order)
	return args.Get(0).(domain.Page[domain.ThreadMetadata]), args.Error(1)
}

func (m *MockStore) DeleteThread(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *MockStore) LoadThreadItems(ctx context.Context, threadID string, after string, limit int, order domain.SortOrder) (domain.Page[domain.ThreadItem], error) {
	args := m.Called(ctx, threadID, after, limit, order)
	return args.Get(0).(domain.Page[domain.ThreadItem]), args.Error(1)
}

func (m *MockStore) AddThreadItem(ctx context.Context, threadID string, item domain.ThreadItem) error {
	args := m.Called(ctx, threadID, item)
	return args.Error(0)
}

func (m *MockStore) SaveItem(ctx context.Context, threadID string, item domain.ThreadItem) error {
	args := m.Called(ctx, threadID, item)
	return args.Error(0)
}

func (m *MockStore) LoadItem(ctx context.Context, threadID, itemID string) (domain.ThreadItem, error) {
	args := m.Called(ctx, threadID, itemID)
	return args.Get(0).(domain.ThreadItem), args.Error(1)
}

func (m *MockStore) DeleteThreadItem(ctx context.Context, threadID, itemID string) error {
	args := m.Called(ctx, threadID, itemID)
	return args.Error(0)
}

func (m *MockStore) SaveAttachment(ctx context.Context, attachment domain.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockStore) LoadAttachment(ctx context.Context, attachmentID string) (domain.Attachment, error) {
	args := m.Called(ctx, attachmentID)
	return args.Get(0).(domain.Attachment), args.Error(1)
}

func (m *MockStore) DeleteAttachment(ctx context.Context, attachmentID string) error {
	args := m.Called(ctx, attachmentID)
	return args.Error(0)
}

// MockProvider mocks the agent.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) DefaultModel() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockProvider) Respond(ctx context.Context, req agent.Request) (*agent.Reply, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Reply), args.Error(1)
}
