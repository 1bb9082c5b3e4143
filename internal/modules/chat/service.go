package chat

import (
	"context"
	"strings"

	"montafacil/internal/domain"
)

// Service handles the per-service conversation between the owning store's
// user and the applying assembler's user. There is no conversation entity;
// messages are scoped by service and gated by participation.
type Service struct {
	messages     MessageRepository
	services     ServiceReader
	stores       StoreReader
	assemblers   AssemblerReader
	applications ApplicationReader
	users        UserReader
	notifs       NotificationSender
}

func NewService(
	messages MessageRepository,
	services ServiceReader,
	stores StoreReader,
	assemblers AssemblerReader,
	applications ApplicationReader,
	users UserReader,
	notifs NotificationSender,
) *Service {
	return &Service{
		messages:     messages,
		services:     services,
		stores:       stores,
		assemblers:   assemblers,
		applications: applications,
		users:        users,
		notifs:       notifs,
	}
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

// Send appends a message and notifies the counterparty. A store user may
// write iff they own the service; an assembler iff they hold an application
// against it.
func (s *Service) Send(ctx context.Context, serviceID, senderID int64, req SendMessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}

	if ok, err := s.isParticipant(ctx, svc, senderID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotParticipant
	}

	msg := &domain.Message{
		ServiceID:   serviceID,
		SenderID:    senderID,
		Content:     req.Content,
		MessageType: domain.MessageTypeText,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, svc, msg)

	sender, _ := s.users.GetByID(ctx, senderID)
	msg.Sender = sender

	return msg, nil
}

// List returns the conversation in chronological order for a participant.
func (s *Service) List(ctx context.Context, serviceID, userID int64) ([]domain.Message, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}

	if ok, err := s.isParticipant(ctx, svc, userID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotParticipant
	}

	return s.messages.GetByService(ctx, serviceID)
}

func (s *Service) MarkRead(ctx context.Context, serviceID, userID int64) error {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ErrNotFound
	}

	if ok, err := s.isParticipant(ctx, svc, userID); err != nil {
		return err
	} else if !ok {
		return ErrNotParticipant
	}

	return s.messages.MarkRead(ctx, serviceID, userID)
}

func (s *Service) UnreadCountForService(ctx context.Context, serviceID, userID int64) (int64, error) {
	return s.messages.CountUnreadForService(ctx, serviceID, userID)
}

func (s *Service) TotalUnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.messages.CountTotalUnread(ctx, userID)
}

// Delete is always rejected. Messages are the dispute/audit history and
// outlive every other mutation the system allows.
func (s *Service) Delete(ctx context.Context, messageID int64) error {
	return ErrMessagesImmutable
}

func (s *Service) isParticipant(ctx context.Context, svc *domain.Service, userID int64) (bool, error) {
	if store, err := s.stores.GetByUserID(ctx, userID); err == nil {
		return store.ID == svc.StoreID, nil
	}

	assembler, err := s.assemblers.GetByUserID(ctx, userID)
	if err != nil {
		return false, nil
	}
	app, err := s.applications.GetByServiceAndAssembler(ctx, svc.ID, assembler.ID)
	if err != nil {
		return false, err
	}
	return app != nil, nil
}

func (s *Service) notifyCounterparty(ctx context.Context, svc *domain.Service, msg *domain.Message) {
	if s.notifs == nil {
		return
	}

	store, err := s.stores.GetByID(ctx, svc.StoreID)
	if err != nil {
		return
	}

	recipientID := store.UserID
	if msg.SenderID == store.UserID {
		accepted, err := s.applications.GetAccepted(ctx, svc.ID)
		if err != nil || accepted == nil {
			return
		}
		if accepted.Assembler != nil {
			recipientID = accepted.Assembler.UserID
		} else if a, err := s.assemblers.GetByID(ctx, accepted.AssemblerID); err == nil {
			recipientID = a.UserID
		} else {
			return
		}
	}

	senderName := ""
	if u, err := s.users.GetByID(ctx, msg.SenderID); err == nil {
		senderName = u.Name
	}

	_ = s.notifs.NotifyNewMessage(ctx, recipientID, svc.ID, msg.ID, msg.SenderID, senderName, msg.Content)
}
