package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("quote not found")
	// ErrNumberTaken surfaces the unique number index rejecting a write;
	// retrying picks up the next sequence value.
	ErrNumberTaken = errors.New("quote number already exists")
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

func buildItems(reqs []LineItemRequest) ([]LineItem, int) {
	items := make([]LineItem, 0, len(reqs))
	subtotal := 0
	for _, it := range reqs {
		line := LineItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Quantity * it.UnitPrice,
		}
		subtotal += line.Total
		items = append(items, line)
	}
	return items, subtotal
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Quote, error) {
	now := time.Now().In(s.location)

	count, err := s.repo.CountYear(ctx, now.Year())
	if err != nil {
		return Quote{}, err
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	items, subtotal := buildItems(req.Items)
	quote := Quote{
		ID:        primitive.NewObjectID().Hex(),
		Number:    fmt.Sprintf("DV-%04d-%04d", now.Year(), count+1),
		ClientID:  req.ClientID,
		Items:     items,
		Subtotal:  subtotal,
		Total:     subtotal,
		Status:    status,
		IssuedAt:  now,
		ValidTill: req.ValidTill,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, quote); err != nil {
		return Quote{}, err
	}
	return quote, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Quote, error) {
	items, subtotal := buildItems(req.Items)
	set := bson.M{
		"clientId":  req.ClientID,
		"items":     items,
		"subtotal":  subtotal,
		"total":     subtotal,
		"notes":     strings.TrimSpace(req.Notes),
		"updatedAt": time.Now().In(s.location),
	}
	if req.Status != "" {
		set["status"] = req.Status
	}
	if req.ValidTill != nil {
		set["validTill"] = *req.ValidTill
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	quote, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}
	return quote, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Quote, int64, error) {
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
