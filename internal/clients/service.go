package clients

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound   = errors.New("client not found")
	ErrEmailTaken = errors.New("client email already exists")
)

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Client, error) {
	now := time.Now().In(s.location)
	client := Client{
		ID:        primitive.NewObjectID().Hex(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, client); err != nil {
		return Client{}, err
	}
	return client, nil
}

// EnsureForUser links a registration to the studio's client book. An
// existing record with the same email is reused so admin-created clients
// keep their history when the person later opens an account.
func (s *Service) EnsureForUser(ctx context.Context, email, firstName, lastName string) (Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	client, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Client{}, err
	}

	created, err := s.Create(ctx, UpsertRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	})
	if errors.Is(err, ErrEmailTaken) {
		// lost a race with a concurrent registration
		return s.repo.FindByEmail(ctx, email)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Client, error) {
	set := bson.M{
		"firstName": strings.TrimSpace(req.FirstName),
		"lastName":  strings.TrimSpace(req.LastName),
		"email":     strings.ToLower(strings.TrimSpace(req.Email)),
		"phone":     strings.TrimSpace(req.Phone),
		"notes":     strings.TrimSpace(req.Notes),
		"updatedAt": time.Now().In(s.location),
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return updated, nil
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

func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	client, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return client, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Client, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
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
