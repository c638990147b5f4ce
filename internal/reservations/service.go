package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"eclat-backend/internal/schedule"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("reservation not found")
	ErrTargetRequired    = errors.New("serviceId or formationId is required")
	ErrClientNotFound    = errors.New("client not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrFormationNotFound = errors.New("formation not found")
	ErrPastDate          = errors.New("date in the past")
	ErrSlotNotAllowed    = errors.New("slot outside opening hours")
	ErrSlotTaken         = errors.New("slot already booked")
)

// ExistsFunc reports whether a referenced entity id resolves. The concrete
// lookups are wired in at construction so the lifecycle stays storage-agnostic.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

type Service struct {
	repo            Repository
	clientExists    ExistsFunc
	serviceExists   ExistsFunc
	formationExists ExistsFunc
	location        *time.Location
}

func NewService(repo Repository, clientExists, serviceExists, formationExists ExistsFunc, location *time.Location) *Service {
	return &Service{
		repo:            repo,
		clientExists:    clientExists,
		serviceExists:   serviceExists,
		formationExists: formationExists,
		location:        location,
	}
}

// Create books a slot. The caller may reference a service, a formation, or
// both; referencing neither is rejected. Whatever status the request carried
// is discarded: every reservation starts pending.
func (s *Service) Create(ctx context.Context, req CreateRequest, now time.Time) (Reservation, error) {
	if req.ServiceID == "" && req.FormationID == "" {
		return Reservation{}, ErrTargetRequired
	}

	past, err := schedule.IsDatePast(req.Date, s.location, now)
	if err != nil {
		return Reservation{}, err
	}
	if past {
		return Reservation{}, ErrPastDate
	}

	allowed, err := schedule.IsSlotAllowed(req.Date, req.Time, s.location)
	if err != nil {
		return Reservation{}, err
	}
	if !allowed {
		return Reservation{}, ErrSlotNotAllowed
	}

	if ok, err := s.clientExists(ctx, req.ClientID); err != nil {
		return Reservation{}, err
	} else if !ok {
		return Reservation{}, ErrClientNotFound
	}
	if req.ServiceID != "" {
		if ok, err := s.serviceExists(ctx, req.ServiceID); err != nil {
			return Reservation{}, err
		} else if !ok {
			return Reservation{}, ErrServiceNotFound
		}
	}
	if req.FormationID != "" {
		if ok, err := s.formationExists(ctx, req.FormationID); err != nil {
			return Reservation{}, err
		} else if !ok {
			return Reservation{}, ErrFormationNotFound
		}
	}

	booked, err := s.repo.BookedTimes(ctx, req.Date)
	if err != nil {
		return Reservation{}, err
	}
	if booked[req.Time] {
		return Reservation{}, ErrSlotTaken
	}

	created := time.Now().In(s.location)
	reservation := Reservation{
		ID:          primitive.NewObjectID().Hex(),
		Date:        req.Date,
		Time:        req.Time,
		Status:      StatusPending,
		Notes:       strings.TrimSpace(req.Notes),
		ClientID:    req.ClientID,
		ServiceID:   req.ServiceID,
		FormationID: req.FormationID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	if err := s.repo.Insert(ctx, reservation); err != nil {
		return Reservation{}, err
	}
	return reservation, nil
}

// Update is a partial merge: only fields present in the request change.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Reservation, error) {
	set := bson.M{"updatedAt": time.Now().In(s.location)}
	if req.Date != nil {
		set["date"] = *req.Date
	}
	if req.Time != nil {
		set["time"] = *req.Time
	}
	if req.ClientID != nil {
		set["clientId"] = *req.ClientID
	}
	if req.ServiceID != nil {
		set["serviceId"] = *req.ServiceID
	}
	if req.FormationID != nil {
		set["formationId"] = *req.FormationID
	}
	if req.Notes != nil {
		set["notes"] = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Reservation{}, ErrNotFound
		}
		return Reservation{}, err
	}
	return updated, nil
}

// UpdateStatus sets any of the four statuses without checking the source
// state. The permissive transition table is deliberate: the studio operator
// uses it as a manual override.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Reservation, error) {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now().In(s.location),
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Reservation{}, ErrNotFound
		}
		return Reservation{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Reservation{}, ErrNotFound
		}
		return Reservation{}, err
	}
	return reservation, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reservation, int64, error) {
	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Availability lists the open slots of a date: opening-hours grid minus
// booked reservations, minus slots already in the past for today.
func (s *Service) Availability(ctx context.Context, date string, now time.Time) ([]string, error) {
	slots, err := schedule.GenerateSlots(date, s.location)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedTimes(ctx, date)
	if err != nil {
		return nil, err
	}
	slots = schedule.FilterReserved(slots, booked)

	return schedule.FilterPastSlots(date, slots, s.location, now)
}
