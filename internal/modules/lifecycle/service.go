package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"montafacil/internal/domain"
	"montafacil/internal/geo"
	"montafacil/internal/repository"
)

// Service owns the service/application state machine: posting, browsing,
// application, acceptance, confirmation and completion.
type Service struct {
	services     ServiceRepository
	applications ApplicationRepository
	stores       StoreReader
	assemblers   AssemblerReader
	users        UserReader
	messages     MessageWriter
	notifs       NotificationSender
	geocoder     geo.Geocoder
}

func NewService(
	services ServiceRepository,
	applications ApplicationRepository,
	stores StoreReader,
	assemblers AssemblerReader,
	users UserReader,
	messages MessageWriter,
	notifs NotificationSender,
	geocoder geo.Geocoder,
) *Service {
	return &Service{
		services:     services,
		applications: applications,
		stores:       stores,
		assemblers:   assemblers,
		users:        users,
		messages:     messages,
		notifs:       notifs,
		geocoder:     geocoder,
	}
}

// Create posts a new service in "open". When a postal code is given without
// explicit coordinates, resolution failure fails the whole operation — a
// posting without a resolvable location would be unfindable for assemblers.
func (s *Service) Create(ctx context.Context, storeUserID int64, req CreateServiceRequest) (*domain.Service, error) {
	store, err := s.stores.GetByUserID(ctx, storeUserID)
	if err != nil {
		return nil, ErrForbidden
	}

	missing := requiredFields(req)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end_date before start_date", ErrValidation)
	}

	price, err := ParsePrice(req.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price", ErrValidation)
	}

	svc := &domain.Service{
		StoreID:      store.ID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Price:        price,
		MaterialType: req.MaterialType,
		ProjectFiles: req.ProjectFiles,
		Status:       domain.ServiceOpen,
	}

	if svc.Latitude == nil && svc.PostalCode != "" {
		coords, err := s.geocoder.Resolve(ctx, svc.PostalCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
		}
		svc.Latitude = &coords.Latitude
		svc.Longitude = &coords.Longitude
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func requiredFields(req CreateServiceRequest) []string {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if req.StartDate.IsZero() {
		missing = append(missing, "start_date")
	}
	if req.EndDate.IsZero() {
		missing = append(missing, "end_date")
	}
	if strings.TrimSpace(req.Price) == "" {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(req.MaterialType) == "" {
		missing = append(missing, "material_type")
	}
	return missing
}

// ListOpenFor returns open services for a browsing assembler, narrowed by
// their declared specialties, annotated with their own application status
// and a distance estimate. Geocoding failures degrade — first to the city
// centroid, then to "no distance" — and never block the listing.
func (s *Service) ListOpenFor(ctx context.Context, assemblerUserID int64) ([]ServiceListing, error) {
	assembler, err := s.assemblers.GetByUserID(ctx, assemblerUserID)
	if err != nil {
		return nil, ErrForbidden
	}

	services, err := s.services.ListOpen(ctx, assembler.Specialties)
	if err != nil {
		return nil, err
	}

	origin, originApprox := s.resolveOrigin(ctx, assembler)

	out := make([]ServiceListing, 0, len(services))
	for i := range services {
		listing := ServiceListing{Service: services[i]}

		app, err := s.applications.GetByServiceAndAssembler(ctx, services[i].ID, assembler.ID)
		if err == nil && app != nil {
			status := app.Status
			listing.ApplicationStatus = &status
		}

		if origin != nil {
			if target, approx := s.resolveTarget(ctx, &services[i]); target != nil {
				km := geo.DistanceKm(*origin, *target)
				listing.DistanceKm = &km
				listing.DistanceApproximate = originApprox || approx
			}
		}

		out = append(out, listing)
	}
	return out, nil
}

func (s *Service) resolveOrigin(ctx context.Context, a *domain.Assembler) (*geo.Coordinates, bool) {
	if a.PostalCode != "" {
		if coords, err := s.geocoder.Resolve(ctx, a.PostalCode); err == nil {
			return &coords, false
		}
	}
	if a.City != "" {
		if coords, err := s.geocoder.ResolveCity(ctx, a.City, a.State); err == nil {
			return &coords, true
		}
	}
	return nil, false
}

func (s *Service) resolveTarget(ctx context.Context, svc *domain.Service) (*geo.Coordinates, bool) {
	if svc.Latitude != nil && svc.Longitude != nil {
		return &geo.Coordinates{Latitude: *svc.Latitude, Longitude: *svc.Longitude}, false
	}
	if svc.PostalCode != "" {
		if coords, err := s.geocoder.Resolve(ctx, svc.PostalCode); err == nil {
			return &coords, false
		}
	}
	if svc.City != "" {
		if coords, err := s.geocoder.ResolveCity(ctx, svc.City, svc.State); err == nil {
			return &coords, true
		}
	}
	return nil, false
}

// Apply creates a pending application, seeds the conversation and notifies
// the store. Retries are idempotent: an existing application is returned
// with its current status instead of erroring or duplicating.
func (s *Service) Apply(ctx context.Context, assemblerUserID, serviceID int64, note string) (*domain.Application, error) {
	assembler, err := s.assemblers.GetByUserID(ctx, assemblerUserID)
	if err != nil {
		return nil, ErrForbidden
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}

	existing, err := s.applications.GetByServiceAndAssembler(ctx, serviceID, assembler.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if svc.Status != domain.ServiceOpen {
		return nil, ErrServiceNotOpen
	}

	app := &domain.Application{
		ServiceID:   serviceID,
		AssemblerID: assembler.ID,
		Status:      domain.ApplicationPending,
		Note:        note,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race against our own retry; surface the winner.
			return s.applications.GetByServiceAndAssembler(ctx, serviceID, assembler.ID)
		}
		return nil, err
	}

	s.seedIntroMessage(ctx, svc, assembler, note)
	s.notifyNewApplication(ctx, svc, assembler, app)

	return app, nil
}

func (s *Service) seedIntroMessage(ctx context.Context, svc *domain.Service, assembler *domain.Assembler, note string) {
	content := "Olá! Me candidatei para realizar este serviço."
	if strings.TrimSpace(note) != "" {
		content = note
	}
	msg := &domain.Message{
		ServiceID:   svc.ID,
		SenderID:    assembler.UserID,
		Content:     content,
		MessageType: domain.MessageTypeText,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		log.Printf("level=error msg=failed to seed intro message service_id=%d err=%v", svc.ID, err)
	}
}

func (s *Service) notifyNewApplication(ctx context.Context, svc *domain.Service, assembler *domain.Assembler, app *domain.Application) {
	if s.notifs == nil {
		return
	}
	store, err := s.stores.GetByID(ctx, svc.StoreID)
	if err != nil {
		return
	}
	name := "Um montador"
	if u, err := s.users.GetByID(ctx, assembler.UserID); err == nil {
		name = u.Name
	}
	_ = s.notifs.NotifyNewApplication(ctx, store.UserID, svc.ID, app.ID, name)
}

// Accept sets the target application to accepted, rejects every sibling and
// moves the service to in-progress — all in one storage transaction, the
// single serialization point of the lifecycle.
func (s *Service) Accept(ctx context.Context, storeUserID, applicationID int64) (*domain.Application, error) {
	store, err := s.stores.GetByUserID(ctx, storeUserID)
	if err != nil {
		return nil, ErrForbidden
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, ErrNotFound
	}

	svc, err := s.services.GetByID(ctx, app.ServiceID)
	if err != nil {
		return nil, ErrNotFound
	}
	if svc.StoreID != store.ID {
		return nil, ErrForbidden
	}

	if err := s.applications.AcceptAndRejectSiblings(ctx, app.ID, svc.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	app.Status = domain.ApplicationAccepted

	if s.notifs != nil && app.Assembler != nil {
		_ = s.notifs.NotifyApplicationAccepted(ctx, app.Assembler.UserID, svc.ID, svc.Title)
	}

	return app, nil
}

// ConfirmByAssembler marks the in-person execution as confirmed, which
// unblocks payment-charge creation. The lifecycle status is untouched.
func (s *Service) ConfirmByAssembler(ctx context.Context, assemblerUserID, serviceID int64) error {
	assembler, err := s.assemblers.GetByUserID(ctx, assemblerUserID)
	if err != nil {
		return ErrForbidden
	}

	accepted, err := s.applications.GetAccepted(ctx, serviceID)
	if err != nil {
		return err
	}
	if accepted == nil || accepted.AssemblerID != assembler.ID {
		return ErrForbidden
	}

	if err := s.services.SetPaymentReady(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrConflict
		}
		return err
	}

	if s.notifs != nil {
		if svc, err := s.services.GetByID(ctx, serviceID); err == nil {
			if store, err := s.stores.GetByID(ctx, svc.StoreID); err == nil {
				_ = s.notifs.NotifyServiceConfirmed(ctx, store.UserID, serviceID)
			}
		}
	}
	return nil
}

// Complete may be called by the owning store or the accepted assembler.
func (s *Service) Complete(ctx context.Context, userID int64, role domain.UserRole, serviceID int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}

	storeUserID, assemblerUserID, err := s.participants(ctx, svc)
	if err != nil {
		return nil, err
	}

	switch role {
	case domain.RoleStoreOwner:
		if userID != storeUserID {
			return nil, ErrForbidden
		}
	case domain.RoleAssembler:
		if assemblerUserID == 0 || userID != assemblerUserID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if err := s.services.Complete(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyServiceCompleted(ctx, storeUserID, serviceID)
		if assemblerUserID != 0 {
			_ = s.notifs.NotifyServiceCompleted(ctx, assemblerUserID, serviceID)
		}
	}

	return s.services.GetByID(ctx, serviceID)
}

// Delete removes an open service and cascades to its applications, messages
// and ratings. Anything past "open" is refused to protect history.
func (s *Service) Delete(ctx context.Context, storeUserID, serviceID int64) error {
	store, err := s.stores.GetByUserID(ctx, storeUserID)
	if err != nil {
		return ErrForbidden
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ErrNotFound
	}
	if svc.StoreID != store.ID {
		return ErrForbidden
	}

	if err := s.services.Delete(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrNotDeletable
		}
		return err
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

func (s *Service) ListMine(ctx context.Context, storeUserID int64) ([]domain.Service, error) {
	store, err := s.stores.GetByUserID(ctx, storeUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.services.ListByStore(ctx, store.ID)
}

func (s *Service) ListApplications(ctx context.Context, storeUserID, serviceID int64) ([]domain.Application, error) {
	store, err := s.stores.GetByUserID(ctx, storeUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}
	if svc.StoreID != store.ID {
		return nil, ErrForbidden
	}
	return s.applications.ListByService(ctx, serviceID)
}

func (s *Service) ListMyApplications(ctx context.Context, assemblerUserID int64) ([]domain.Application, error) {
	assembler, err := s.assemblers.GetByUserID(ctx, assemblerUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.applications.ListByAssembler(ctx, assembler.ID)
}

// participants resolves the two user ids on either side of a service.
// assemblerUserID is 0 while no application has been accepted.
func (s *Service) participants(ctx context.Context, svc *domain.Service) (storeUserID, assemblerUserID int64, err error) {
	store, err := s.stores.GetByID(ctx, svc.StoreID)
	if err != nil {
		return 0, 0, err
	}
	storeUserID = store.UserID

	accepted, err := s.applications.GetAccepted(ctx, svc.ID)
	if err != nil {
		return 0, 0, err
	}
	if accepted != nil {
		if accepted.Assembler != nil {
			assemblerUserID = accepted.Assembler.UserID
		} else if a, err := s.assemblers.GetByID(ctx, accepted.AssemblerID); err == nil {
			assemblerUserID = a.UserID
		}
	}
	return storeUserID, assemblerUserID, nil
}
