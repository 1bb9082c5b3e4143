package notification

import (
	"context"
	"fmt"
	"log"

	"montafacil/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}

// Service is the notification bus: it persists every event and pushes it to
// the recipient's live connection when one exists. Delivery is strictly
// best-effort; no caller depends on it succeeding.
type Service struct {
	repo Repository
	hub  *Hub
}

func NewService(repo Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

type pushEvent struct {
	Type    domain.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Data    map[string]any          `json:"data,omitempty"`
}

func (s *Service) notify(ctx context.Context, userID int64, t domain.NotificationType, title, message string, data map[string]any) error {
	n := &domain.Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		Data:    data,
		IsRead:  false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("level=error msg=failed to persist notification user_id=%d type=%s err=%v", userID, t, err)
		return err
	}

	if s.hub != nil {
		s.hub.SendToUser(userID, pushEvent{Type: t, Title: title, Message: message, Data: data})
	}
	return nil
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) NotifyNewApplication(ctx context.Context, storeUserID, serviceID, applicationID int64, assemblerName string) error {
	return s.notify(
		ctx,
		storeUserID,
		domain.NotifNewApplication,
		"Nova candidatura",
		fmt.Sprintf("%s se candidatou ao seu serviço", assemblerName),
		map[string]any{
			"service_id":     serviceID,
			"application_id": applicationID,
		},
	)
}

func (s *Service) NotifyApplicationAccepted(ctx context.Context, assemblerUserID, serviceID int64, serviceTitle string) error {
	return s.notify(
		ctx,
		assemblerUserID,
		domain.NotifApplicationAccepted,
		"Candidatura aceita",
		fmt.Sprintf("Sua candidatura para %q foi aceita", serviceTitle),
		map[string]any{
			"service_id": serviceID,
		},
	)
}

func (s *Service) NotifyServiceConfirmed(ctx context.Context, storeUserID, serviceID int64) error {
	return s.notify(
		ctx,
		storeUserID,
		domain.NotifServiceConfirmed,
		"Serviço confirmado",
		"O montador confirmou a execução. O pagamento já pode ser realizado",
		map[string]any{
			"service_id": serviceID,
		},
	)
}

func (s *Service) NotifyServiceCompleted(ctx context.Context, userID, serviceID int64) error {
	return s.notify(
		ctx,
		userID,
		domain.NotifServiceCompleted,
		"Serviço concluído",
		"O serviço foi concluído. Avalie a outra parte para finalizar",
		map[string]any{
			"service_id": serviceID,
		},
	)
}

func (s *Service) NotifyPaymentConfirmed(ctx context.Context, userID, serviceID int64, reference string) error {
	return s.notify(
		ctx,
		userID,
		domain.NotifPaymentConfirmed,
		"Pagamento confirmado",
		"O pagamento via PIX foi confirmado",
		map[string]any{
			"service_id":        serviceID,
			"payment_reference": reference,
		},
	)
}

func (s *Service) NotifyPaymentProof(ctx context.Context, userID, serviceID int64) error {
	return s.notify(
		ctx,
		userID,
		domain.NotifPaymentProof,
		"Comprovante enviado",
		"Um comprovante de pagamento foi anexado ao serviço",
		map[string]any{
			"service_id": serviceID,
		},
	)
}

func (s *Service) NotifyNewMessage(ctx context.Context, recipientID, serviceID, messageID, senderID int64, senderName, preview string) error {
	return s.notify(
		ctx,
		recipientID,
		domain.NotifNewMessage,
		fmt.Sprintf("Mensagem de %s", senderName),
		previewOf(preview),
		map[string]any{
			"service_id": serviceID,
			"message_id": messageID,
			"sender_id":  senderID,
		},
	)
}

// previewOf trims a chat message to a short push preview. Cut on a rune
// boundary; message content is UTF-8 and a byte slice could split a
// character.
func previewOf(content string) string {
	r := []rune(content)
	if len(r) <= 50 {
		return content
	}
	return string(r[:50]) + "..."
}

func (s *Service) NotifyRatingReceived(ctx context.Context, rateeUserID, serviceID int64, score int) error {
	return s.notify(
		ctx,
		rateeUserID,
		domain.NotifRatingReceived,
		"Nova avaliação",
		fmt.Sprintf("Você recebeu uma avaliação de %d estrelas", score),
		map[string]any{
			"service_id": serviceID,
			"score":      score,
		},
	)
}
