package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"montafacil/internal/domain"
	"montafacil/internal/repository"
)

// Mock repositories

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	if msg != nil {
		msg.ID = 301 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockMessageRepository) GetByService(ctx context.Context, serviceID int64) ([]domain.Message, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, serviceID, userID int64) error {
	args := m.Called(ctx, serviceID, userID)
	return args.Error(0)
}

func (m *MockMessageRepository) CountUnreadForService(ctx context.Context, serviceID, userID int64) (int64, error) {
	args := m.Called(ctx, serviceID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) CountTotalUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockServiceReader struct {
	mock.Mock
}

func (m *MockServiceReader) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockStoreReader struct {
	mock.Mock
}

func (m *MockStoreReader) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreReader) GetByUserID(ctx context.Context, userID int64) (*domain.Store, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

type MockAssemblerReader struct {
	mock.Mock
}

func (m *MockAssemblerReader) GetByID(ctx context.Context, id int64) (*domain.Assembler, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assembler), args.Error(1)
}

func (m *MockAssemblerReader) GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assembler), args.Error(1)
}

type MockApplicationReader struct {
	mock.Mock
}

func (m *MockApplicationReader) GetByServiceAndAssembler(ctx context.Context, serviceID, assemblerID int64) (*domain.Application, error) {
	args := m.Called(ctx, serviceID, assemblerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationReader) GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyNewMessage(ctx context.Context, recipientID, serviceID, messageID, senderID int64, senderName, preview string) error {
	args := m.Called(ctx, recipientID, serviceID, messageID, senderID, senderName, preview)
	return args.Error(0)
}

type fixture struct {
	messages     *MockMessageRepository
	services     *MockServiceReader
	stores       *MockStoreReader
	assemblers   *MockAssemblerReader
	applications *MockApplicationReader
	users        *MockUserReader
	notifs       *MockNotificationSender
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		messages:     new(MockMessageRepository),
		services:     new(MockServiceReader),
		stores:       new(MockStoreReader),
		assemblers:   new(MockAssemblerReader),
		applications: new(MockApplicationReader),
		users:        new(MockUserReader),
		notifs:       new(MockNotificationSender),
	}
	f.svc = NewService(f.messages, f.services, f.stores, f.assemblers, f.applications, f.users, f.notifs)
	return f
}

func TestSend_AssemblerWithApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := &domain.Service{ID: 101, StoreID: 10}

	f.services.On("GetByID", ctx, int64(101)).Return(svc, nil)
	f.stores.On("GetByUserID", ctx, int64(2)).Return(nil, repository.ErrNotFound)
	f.assemblers.On("GetByUserID", ctx, int64(2)).Return(&domain.Assembler{ID: 20, UserID: 2}, nil)
	f.applications.On("GetByServiceAndAssembler", ctx, int64(101), int64(20)).
		Return(&domain.Application{ID: 201, Status: domain.ApplicationPending}, nil)
	f.messages.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.users.On("GetByID", ctx, int64(2)).Return(&domain.User{ID: 2, Name: "João"}, nil)
	f.notifs.On("NotifyNewMessage", ctx, int64(1), int64(101), int64(301), int64(2), "João", "Posso começar amanhã?").Return(nil)

	msg, err := f.svc.Send(ctx, 101, 2, SendMessageRequest{Content: "Posso começar amanhã?"})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeText, msg.MessageType)
	assert.Equal(t, "João", msg.Sender.Name)
	f.notifs.AssertExpectations(t)
}

func TestSend_StoreNotifiesAcceptedAssembler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := &domain.Service{ID: 101, StoreID: 10}

	f.services.On("GetByID", ctx, int64(101)).Return(svc, nil)
	f.stores.On("GetByUserID", ctx, int64(1)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.messages.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.applications.On("GetAccepted", ctx, int64(101)).Return(&domain.Application{
		ID: 201, AssemblerID: 20, Assembler: &domain.Assembler{ID: 20, UserID: 2},
	}, nil)
	f.users.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "Loja Central"}, nil)
	f.notifs.On("NotifyNewMessage", ctx, int64(2), int64(101), int64(301), int64(1), "Loja Central", "Combinado").Return(nil)

	_, err := f.svc.Send(ctx, 101, 1, SendMessageRequest{Content: "Combinado"})

	assert.NoError(t, err)
	f.notifs.AssertExpectations(t)
}

func TestSend_OutsiderRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(&domain.Service{ID: 101, StoreID: 10}, nil)
	f.stores.On("GetByUserID", ctx, int64(9)).Return(nil, repository.ErrNotFound)
	f.assemblers.On("GetByUserID", ctx, int64(9)).Return(&domain.Assembler{ID: 29, UserID: 9}, nil)
	f.applications.On("GetByServiceAndAssembler", ctx, int64(101), int64(29)).Return(nil, nil)

	_, err := f.svc.Send(ctx, 101, 9, SendMessageRequest{Content: "Oi"})

	assert.ErrorIs(t, err, ErrNotParticipant)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSend_WrongStoreRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(&domain.Service{ID: 101, StoreID: 10}, nil)
	f.stores.On("GetByUserID", ctx, int64(5)).Return(&domain.Store{ID: 55, UserID: 5}, nil)

	_, err := f.svc.Send(ctx, 101, 5, SendMessageRequest{Content: "Oi"})

	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSend_EmptyContent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Send(ctx, 101, 2, SendMessageRequest{Content: "   "})

	assert.ErrorIs(t, err, ErrEmptyContent)
	f.services.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestList_ParticipantOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(&domain.Service{ID: 101, StoreID: 10}, nil)
	f.stores.On("GetByUserID", ctx, int64(1)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.messages.On("GetByService", ctx, int64(101)).Return([]domain.Message{
		{ID: 1, Content: "Olá! Me candidatei para realizar este serviço."},
		{ID: 2, Content: "Pode vir quinta?"},
	}, nil)

	msgs, err := f.svc.List(ctx, 101, 1)

	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestDelete_AlwaysRejected(t *testing.T) {
	f := newFixture()

	err := f.svc.Delete(context.Background(), 301)

	assert.ErrorIs(t, err, ErrMessagesImmutable)
}

func TestMarkRead_Gated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(&domain.Service{ID: 101, StoreID: 10}, nil)
	f.stores.On("GetByUserID", ctx, int64(9)).Return(nil, repository.ErrNotFound)
	f.assemblers.On("GetByUserID", ctx, int64(9)).Return(nil, repository.ErrNotFound)

	err := f.svc.MarkRead(ctx, 101, 9)

	assert.ErrorIs(t, err, ErrNotParticipant)
	f.messages.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}
