package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepository struct {
	byID map[string]Client
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[string]Client)}
}

func (f *fakeRepository) emailTaken(email, excludeID string) bool {
	for id, c := range f.byID {
		if c.Email == email && id != excludeID {
			return true
		}
	}
	return false
}

func (f *fakeRepository) Insert(ctx context.Context, client Client) error {
	if f.emailTaken(client.Email, "") {
		return ErrEmailTaken
	}
	f.byID[client.ID] = client
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, set bson.M) (Client, error) {
	c, ok := f.byID[id]
	if !ok {
		return Client{}, mongo.ErrNoDocuments
	}
	if v, ok := set["email"]; ok {
		email := v.(string)
		if f.emailTaken(email, id) {
			return Client{}, ErrEmailTaken
		}
		c.Email = email
	}
	if v, ok := set["firstName"]; ok {
		c.FirstName = v.(string)
	}
	if v, ok := set["lastName"]; ok {
		c.LastName = v.(string)
	}
	if v, ok := set["phone"]; ok {
		c.Phone = v.(string)
	}
	if v, ok := set["notes"]; ok {
		c.Notes = v.(string)
	}
	f.byID[id] = c
	return c, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (Client, error) {
	c, ok := f.byID[id]
	if !ok {
		return Client{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (Client, error) {
	for _, c := range f.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return Client{}, mongo.ErrNoDocuments
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Client, error) {
	items := make([]Client, 0, len(f.byID))
	for _, c := range f.byID {
		items = append(items, c)
	}
	return items, nil
}

func (f *fakeRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return int64(len(f.byID)), nil
}

func testRequest() UpsertRequest {
	return UpsertRequest{
		FirstName: "Léa",
		LastName:  "Durand",
		Email:     "Lea@Example.com",
		Phone:     "+33612345678",
	}
}

func TestEnsureForUserCreatesClient(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, time.UTC)

	client, err := svc.EnsureForUser(context.Background(), "Lea@Example.com", "Léa", "Durand")
	if err != nil {
		t.Fatalf("EnsureForUser error: %v", err)
	}
	if client.Email != "lea@example.com" {
		t.Fatalf("email should be lowercased, got %q", client.Email)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one client record, got %d", len(repo.byID))
	}
}

func TestEnsureForUserReusesExisting(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, time.UTC)

	existing, err := svc.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	client, err := svc.EnsureForUser(context.Background(), "LEA@example.com", "Léa", "Durand")
	if err != nil {
		t.Fatalf("EnsureForUser error: %v", err)
	}
	if client.ID != existing.ID {
		t.Fatalf("expected the existing client %q, got %q", existing.ID, client.ID)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("no duplicate record may be created, got %d", len(repo.byID))
	}
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	client, err := svc.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if client.Email != "lea@example.com" {
		t.Fatalf("email should be lowercased, got %q", client.Email)
	}
	if client.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, time.UTC)

	if _, err := svc.Create(context.Background(), testRequest()); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), testRequest()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("store must be unchanged, got %d clients", len(repo.byID))
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	if _, err := svc.Update(context.Background(), "ghost", testRequest()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateConflictingEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, time.UTC)

	first, err := svc.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	other := testRequest()
	other.Email = "zoe@example.com"
	second, err := svc.Create(context.Background(), other)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	conflicting := testRequest()
	conflicting.Email = first.Email
	if _, err := svc.Update(context.Background(), second.ID, conflicting); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRoundTrip(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	created, err := svc.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Email != created.Email {
		t.Fatalf("unexpected client: %+v", got)
	}
}
