package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepository struct {
	byID map[string]Reservation
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[string]Reservation)}
}

func (f *fakeRepository) Insert(ctx context.Context, reservation Reservation) error {
	f.byID[reservation.ID] = reservation
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, set bson.M) (Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return Reservation{}, mongo.ErrNoDocuments
	}
	if v, ok := set["status"]; ok {
		res.Status = v.(string)
	}
	if v, ok := set["date"]; ok {
		res.Date = v.(string)
	}
	if v, ok := set["time"]; ok {
		res.Time = v.(string)
	}
	if v, ok := set["notes"]; ok {
		res.Notes = v.(string)
	}
	f.byID[id] = res
	return res, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return Reservation{}, mongo.ErrNoDocuments
	}
	return res, nil
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reservation, error) {
	items := make([]Reservation, 0, len(f.byID))
	for _, res := range f.byID {
		items = append(items, res)
	}
	return items, nil
}

func (f *fakeRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeRepository) BookedTimes(ctx context.Context, date string) (map[string]bool, error) {
	booked := make(map[string]bool)
	for _, res := range f.byID {
		if res.Date == date && res.Status != StatusCancelled {
			booked[res.Time] = true
		}
	}
	return booked, nil
}

func allExist(ctx context.Context, id string) (bool, error) { return true, nil }

func noneExist(ctx context.Context, id string) (bool, error) { return false, nil }

func newTestService(repo Repository, clientExists, serviceExists, formationExists ExistsFunc) *Service {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
	return NewService(repo, clientExists, serviceExists, formationExists, loc)
}

// 2026-09-01 is a Tuesday, well inside opening hours territory.
var testNow = time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

func validRequest() CreateRequest {
	return CreateRequest{
		Date:      "2026-09-01",
		Time:      "10:00",
		ClientID:  "client-1",
		ServiceID: "service-1",
	}
}

func TestCreateRequiresTarget(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, allExist, allExist)

	req := validRequest()
	req.ServiceID = ""
	req.FormationID = ""

	if _, err := svc.Create(context.Background(), req, testNow); !errors.Is(err, ErrTargetRequired) {
		t.Fatalf("expected ErrTargetRequired, got %v", err)
	}
}

func TestCreateForcesPendingStatus(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, allExist, allExist)

	req := validRequest()
	req.Status = "confirmed"

	reservation, err := svc.Create(context.Background(), req, testNow)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if reservation.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", reservation.Status)
	}
}

func TestCreatePastDate(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, allExist, allExist)

	req := validRequest()
	req.Date = "2026-08-25"

	if _, err := svc.Create(context.Background(), req, testNow); !errors.Is(err, ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
}

func TestCreateSlotOutsideHours(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, allExist, allExist)

	req := validRequest()
	req.Time = "12:30"

	if _, err := svc.Create(context.Background(), req, testNow); !errors.Is(err, ErrSlotNotAllowed) {
		t.Fatalf("expected ErrSlotNotAllowed, got %v", err)
	}
}

func TestCreateUnknownClient(t *testing.T) {
	svc := newTestService(newFakeRepository(), noneExist, allExist, allExist)

	if _, err := svc.Create(context.Background(), validRequest(), testNow); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestCreateUnknownService(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, noneExist, allExist)

	if _, err := svc.Create(context.Background(), validRequest(), testNow); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestCreateSlotConflict(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, allExist, allExist, allExist)

	if _, err := svc.Create(context.Background(), validRequest(), testNow); err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	req := validRequest()
	req.ClientID = "client-2"
	if _, err := svc.Create(context.Background(), req, testNow); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCreateCancelledSlotIsReusable(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, allExist, allExist, allExist)

	first, err := svc.Create(context.Background(), validRequest(), testNow)
	if err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), first.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	req := validRequest()
	req.ClientID = "client-2"
	if _, err := svc.Create(context.Background(), req, testNow); err != nil {
		t.Fatalf("expected cancelled slot to be bookable, got %v", err)
	}
}

func TestUpdateStatusPermissiveTransitions(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, allExist, allExist, allExist)

	reservation, err := svc.Create(context.Background(), validRequest(), testNow)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Any status can follow any other, including leaving a terminal state.
	for _, status := range []string{StatusCompleted, StatusPending, StatusCancelled, StatusConfirmed} {
		updated, err := svc.UpdateStatus(context.Background(), reservation.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected status %q, got %q", status, updated.Status)
		}
	}
}

func TestUpdateStatusUnknownID(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, allExist, allExist)

	if _, err := svc.UpdateStatus(context.Background(), "ghost", StatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAvailabilityExcludesBookedSlots(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, allExist, allExist, allExist)

	if _, err := svc.Create(context.Background(), validRequest(), testNow); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	slots, err := svc.Availability(context.Background(), "2026-09-01", testNow)
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}
	for _, s := range slots {
		if s == "10:00" {
			t.Fatalf("booked slot must not be offered: %v", slots)
		}
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 open slots, got %d", len(slots))
	}
}

func TestAvailabilityInvalidDate(t *testing.T) {
	svc := newTestService(newFakeRepository(), allExist, allExist, allExist)

	if _, err := svc.Availability(context.Background(), "01/09/2026", testNow); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}
