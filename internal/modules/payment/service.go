package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"montafacil/internal/domain"
)

// The gateway rejects descriptions longer than its solicitação field.
const descriptionMaxLen = 140

// Service orchestrates the external PIX gateway: charge creation and
// webhook reconciliation. Gateway failures never mutate service state;
// webhook processing is idempotent per reference.
type Service struct {
	services     ServiceRepository
	stores       StoreReader
	assemblers   AssemblerReader
	applications ApplicationReader
	bankAccounts BankAccountReader
	messages     MessageWriter
	notifs       NotificationSender
	gateway      Gateway
	loggerf      func(format string, args ...interface{})
}

func NewService(
	services ServiceRepository,
	stores StoreReader,
	assemblers AssemblerReader,
	applications ApplicationReader,
	bankAccounts BankAccountReader,
	messages MessageWriter,
	notifs NotificationSender,
	gateway Gateway,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		services:     services,
		stores:       stores,
		assemblers:   assemblers,
		applications: applications,
		bankAccounts: bankAccounts,
		messages:     messages,
		notifs:       notifs,
		gateway:      gateway,
		loggerf:      loggerf,
	}
}

// CreateCharge creates a PIX charge for a confirmed service. The payment
// reference is persisted before success is returned, so a webhook can be
// correlated even if this HTTP response is lost on the wire.
func (s *Service) CreateCharge(ctx context.Context, payerUserID, serviceID int64) (*CreateChargeResponse, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}

	store, err := s.stores.GetByUserID(ctx, payerUserID)
	if err != nil || store.ID != svc.StoreID {
		return nil, ErrForbidden
	}

	if svc.Status != domain.ServiceInProgress || !svc.PaymentReady {
		return nil, ErrNotReady
	}

	payerName, payerDoc := s.resolvePayer(ctx, payerUserID, store)
	if payerDoc == "" {
		return nil, ErrNoDocument
	}

	reference := fmt.Sprintf("service_%d_%d_%s", serviceID, time.Now().Unix(), uuid.NewString()[:8])

	description := truncateRunes(fmt.Sprintf("Montagem: %s", svc.Title), descriptionMaxLen)

	charge, err := s.gateway.CreateCharge(ctx, ChargeRequest{
		Reference:     reference,
		MovementID:    "mov_" + reference,
		Amount:        svc.Price,
		Description:   description,
		PayerName:     payerName,
		PayerDocument: payerDoc,
	})
	if err != nil {
		s.loggerf("level=error msg=pix charge creation failed service_id=%d err=%v", serviceID, err)
		return nil, err
	}

	if err := s.services.SetPaymentPending(ctx, serviceID, reference); err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=pix charge created service_id=%d reference=%s gateway_id=%s", serviceID, reference, charge.ID)

	return &CreateChargeResponse{
		Reference: reference,
		Code:      charge.Code,
		QRCode:    charge.QRCode,
		GatewayID: charge.ID,
	}, nil
}

// resolvePayer prefers the bank-account document over the store profile's.
// Only the owning store reaches charge creation, so no other profile is
// consulted.
func (s *Service) resolvePayer(ctx context.Context, userID int64, store *domain.Store) (name, document string) {
	name = store.Name
	if acc, err := s.bankAccounts.GetByUserID(ctx, userID); err == nil && acc.Document != "" {
		return name, acc.Document
	}
	return name, store.Document
}

// ReconcileWebhook applies a gateway status callback. Safe to receive more
// than once per reference: the completed transition happens at most once
// and a redelivery appends no second receipt pair.
func (s *Service) ReconcileWebhook(ctx context.Context, payload WebhookPayload) error {
	serviceID, err := serviceIDFromReference(payload.ExternalReference)
	if err != nil {
		return ErrUnknownReference
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ErrUnknownReference
	}
	if svc.PaymentReference != payload.ExternalReference {
		s.loggerf("level=error msg=webhook reference mismatch service_id=%d got=%s want=%s",
			serviceID, payload.ExternalReference, svc.PaymentReference)
		return ErrUnknownReference
	}

	if !isPaidStatus(payload.Status) {
		s.loggerf("level=info msg=ignoring non-terminal webhook status service_id=%d status=%s", serviceID, payload.Status)
		return nil
	}

	store, err := s.stores.GetByID(ctx, svc.StoreID)
	if err != nil {
		return err
	}

	receipts := []domain.Message{
		{
			ServiceID:   svc.ID,
			SenderID:    store.UserID,
			Content:     fmt.Sprintf("Pagamento de R$ %s confirmado via PIX (ref. %s).", svc.Price.StringFixed(2), payload.ExternalReference),
			MessageType: domain.MessageTypeText,
		},
		{
			ServiceID:     svc.ID,
			SenderID:      store.UserID,
			Content:       "Comprovante de pagamento",
			MessageType:   domain.MessageTypePaymentReceipt,
			AttachmentURL: optionalURL(payload.ReceiptURL),
		},
	}

	changed, err := s.services.MarkPaidAndComplete(ctx, svc.ID, receipts)
	if err != nil {
		return err
	}
	if !changed {
		s.loggerf("level=info msg=idempotent webhook redelivery reference=%s", payload.ExternalReference)
		return nil
	}

	s.notifyBothParties(ctx, svc, payload.ExternalReference)
	return nil
}

// SubmitManualProof attaches a payment proof without waiting for the
// webhook. It does not complete the service; only reconciliation (or an
// explicit approval) does.
func (s *Service) SubmitManualProof(ctx context.Context, userID, serviceID int64, req ProofRequest) error {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ErrNotFound
	}

	counterpartyID, err := s.counterpartyOf(ctx, svc, userID)
	if err != nil {
		return err
	}

	content := req.Content
	if strings.TrimSpace(content) == "" {
		content = "Comprovante de pagamento enviado"
	}
	msg := &domain.Message{
		ServiceID:     svc.ID,
		SenderID:      userID,
		Content:       content,
		MessageType:   domain.MessageTypePaymentProof,
		AttachmentURL: optionalURL(req.ProofURL),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return err
	}

	if err := s.services.SetPaymentStatus(ctx, svc.ID, domain.PaymentProofSubmitted); err != nil {
		return err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyPaymentProof(ctx, counterpartyID, svc.ID)
	}
	return nil
}

// Decide records an approve/reject decision for a manually submitted proof.
func (s *Service) Decide(ctx context.Context, userID, serviceID int64, req DecisionRequest) error {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ErrNotFound
	}

	counterpartyID, err := s.counterpartyOf(ctx, svc, userID)
	if err != nil {
		return err
	}

	status := domain.PaymentRejected
	content := "Comprovante de pagamento recusado"
	if req.Approved {
		status = domain.PaymentConfirmed
		content = "Comprovante de pagamento aprovado"
	}
	if strings.TrimSpace(req.Note) != "" {
		content = content + ": " + req.Note
	}

	msg := &domain.Message{
		ServiceID:   svc.ID,
		SenderID:    userID,
		Content:     content,
		MessageType: domain.MessageTypeText,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return err
	}

	if err := s.services.SetPaymentStatus(ctx, svc.ID, status); err != nil {
		return err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyPaymentProof(ctx, counterpartyID, svc.ID)
	}
	return nil
}

// counterpartyOf authorizes userID as a participant and returns the other
// side's user id.
func (s *Service) counterpartyOf(ctx context.Context, svc *domain.Service, userID int64) (int64, error) {
	store, err := s.stores.GetByID(ctx, svc.StoreID)
	if err != nil {
		return 0, err
	}

	accepted, err := s.applications.GetAccepted(ctx, svc.ID)
	if err != nil {
		return 0, err
	}

	var assemblerUserID int64
	if accepted != nil {
		if accepted.Assembler != nil {
			assemblerUserID = accepted.Assembler.UserID
		} else if a, err := s.assemblers.GetByID(ctx, accepted.AssemblerID); err == nil {
			assemblerUserID = a.UserID
		}
	}

	switch userID {
	case store.UserID:
		if assemblerUserID == 0 {
			return 0, ErrForbidden
		}
		return assemblerUserID, nil
	case assemblerUserID:
		return store.UserID, nil
	default:
		return 0, ErrForbidden
	}
}

func (s *Service) notifyBothParties(ctx context.Context, svc *domain.Service, reference string) {
	if s.notifs == nil {
		return
	}
	if store, err := s.stores.GetByID(ctx, svc.StoreID); err == nil {
		_ = s.notifs.NotifyPaymentConfirmed(ctx, store.UserID, svc.ID, reference)
	}
	if accepted, err := s.applications.GetAccepted(ctx, svc.ID); err == nil && accepted != nil {
		if accepted.Assembler != nil {
			_ = s.notifs.NotifyPaymentConfirmed(ctx, accepted.Assembler.UserID, svc.ID, reference)
		} else if a, err := s.assemblers.GetByID(ctx, accepted.AssemblerID); err == nil {
			_ = s.notifs.NotifyPaymentConfirmed(ctx, a.UserID, svc.ID, reference)
		}
	}
}

func serviceIDFromReference(reference string) (int64, error) {
	parts := strings.Split(reference, "_")
	if len(parts) < 2 || parts[0] != "service" {
		return 0, fmt.Errorf("malformed reference %q", reference)
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

func isPaidStatus(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "CONCLUIDO", "CONCLUIDA", "PAID", "COMPLETED":
		return true
	}
	return false
}

// truncateRunes cuts on a rune boundary; Portuguese titles carry
// multi-byte characters a byte slice would split.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func optionalURL(u string) *string {
	if strings.TrimSpace(u) == "" {
		return nil
	}
	return &u
}
