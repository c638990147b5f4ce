package invoices

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
	ErrNotFound = errors.New("invoice not found")
	// ErrNumberTaken surfaces the unique number index rejecting a write;
	// retrying picks up the next sequence value.
	ErrNumberTaken = errors.New("invoice number already exists")
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

// buildItems recomputes line totals server-side; client-supplied totals are
// never trusted. The studio bills under the franchise en base de TVA regime,
// so no tax is added and the invoice total equals the item subtotal.
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

func (s *Service) nextNumber(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	count, err := s.repo.CountYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FA-%04d-%04d", year, count+1), nil
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Invoice, error) {
	now := time.Now().In(s.location)

	number, err := s.nextNumber(ctx, now)
	if err != nil {
		return Invoice{}, err
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	items, subtotal := buildItems(req.Items)
	invoice := Invoice{
		ID:        primitive.NewObjectID().Hex(),
		Number:    number,
		ClientID:  req.ClientID,
		Items:     items,
		Subtotal:  subtotal,
		Total:     subtotal,
		Status:    status,
		IssuedAt:  now,
		DueAt:     req.DueAt,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Invoice, error) {
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
	if req.DueAt != nil {
		set["dueAt"] = *req.DueAt
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Invoice, int64, error) {
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
