package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/wildhaven/parkops-backend/internal/notifications"
	"github.com/wildhaven/parkops-backend/internal/store"
)

// MockQueueService is a mock implementation of the task queue
type MockQueueService struct {
	mock.Mock
}

func NewMockQueueService(t *testing.T) *MockQueueService {
	m := &MockQueueService{}
	m.Test(t)
	return m
}

func (m *MockQueueService) Enqueue(taskType string, data interface{}, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(taskType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

func (m *MockQueueService) EnqueueCritical(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	args := m.Called(taskType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// ExpectEnqueue sets up expectation for any payload of the given type
func (m *MockQueueService) ExpectEnqueue(taskType string) *mock.Call {
	return m.On("Enqueue", taskType, mock.Anything).Return(&asynq.TaskInfo{}, nil)
}

// ExpectEnqueueCritical sets up expectation for any payload of the given type
func (m *MockQueueService) ExpectEnqueueCritical(taskType string) *mock.Call {
	return m.On("EnqueueCritical", taskType, mock.Anything).Return(&asynq.TaskInfo{}, nil)
}

// MockStorageService is a mock implementation of object storage
type MockStorageService struct {
	mock.Mock
}

func NewMockStorageService(t *testing.T) *MockStorageService {
	m := &MockStorageService{}
	m.Test(t)
	return m
}

func (m *MockStorageService) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockStorageService) GeneratePresignedURL(ctx context.Context, method string, key string, duration time.Duration) (string, error) {
	args := m.Called(ctx, method, key, duration)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) ExpectPutObject() *mock.Call {
	return m.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func (m *MockStorageService) ExpectPresignedURL(url string) *mock.Call {
	return m.On("GeneratePresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(url, nil)
}

// MockAuthService is a mock implementation of the login service
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService(t *testing.T) *MockAuthService {
	m := &MockAuthService{}
	m.Test(t)
	return m
}

func (m *MockAuthService) RequestOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (string, string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// MockNotifierService is a mock implementation of the notification
// dispatcher. Read paths fall through to the store so list handlers
// can run against the test database.
type MockNotifierService struct {
	mock.Mock
	Queries *store.Store
}

func NewMockNotifierService(t *testing.T, queries *store.Store) *MockNotifierService {
	m := &MockNotifierService{Queries: queries}
	m.Test(t)
	return m
}

func (m *MockNotifierService) Notify(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID, message string, groups []notifications.NotifierGroup) error {
	args := m.Called(ctx, actorID, entityType, entityID, message, groups)
	return args.Error(0)
}

// ExpectNotify sets up a permissive expectation for Notify
func (m *MockNotifierService) ExpectNotify() *mock.Call {
	return m.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func (m *MockNotifierService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.Notification, error) {
	return m.Queries.ListNotifications(ctx, userID, limit, offset)
}

func (m *MockNotifierService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (store.Notification, error) {
	return m.Queries.MarkNotificationRead(ctx, notificationID, userID)
}

func (m *MockNotifierService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := m.Queries.MarkAllNotificationsRead(ctx, userID)
	return err
}

func (m *MockNotifierService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.Queries.CountUnreadNotifications(ctx, userID)
}
