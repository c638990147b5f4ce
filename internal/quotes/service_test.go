package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepository struct {
	byID      map[string]Quote
	insertErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[string]Quote)}
}

func (f *fakeRepository) Insert(ctx context.Context, quote Quote) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.byID[quote.ID] = quote
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, set bson.M) (Quote, error) {
	q, ok := f.byID[id]
	if !ok {
		return Quote{}, mongo.ErrNoDocuments
	}
	if v, ok := set["status"]; ok {
		q.Status = v.(string)
	}
	if v, ok := set["subtotal"]; ok {
		q.Subtotal = v.(int)
	}
	if v, ok := set["total"]; ok {
		q.Total = v.(int)
	}
	if v, ok := set["items"]; ok {
		q.Items = v.([]LineItem)
	}
	f.byID[id] = q
	return q, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (Quote, error) {
	q, ok := f.byID[id]
	if !ok {
		return Quote{}, mongo.ErrNoDocuments
	}
	return q, nil
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Quote, error) {
	items := make([]Quote, 0, len(f.byID))
	for _, q := range f.byID {
		items = append(items, q)
	}
	return items, nil
}

func (f *fakeRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeRepository) CountYear(ctx context.Context, year int) (int64, error) {
	prefix := fmt.Sprintf("DV-%04d-", year)
	var n int64
	for _, q := range f.byID {
		if strings.HasPrefix(q.Number, prefix) {
			n++
		}
	}
	return n, nil
}

func TestCreateQuoteNumbering(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	year := time.Now().UTC().Year()
	for i := 1; i <= 2; i++ {
		quote, err := svc.Create(context.Background(), UpsertRequest{
			ClientID: "client-1",
			Items:    []LineItemRequest{{Description: "Forfait mariage", Quantity: 1, UnitPrice: 300}},
		})
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		want := fmt.Sprintf("DV-%04d-%04d", year, i)
		if quote.Number != want {
			t.Fatalf("expected number %s, got %s", want, quote.Number)
		}
	}
}

func TestCreateQuoteComputesTotals(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	quote, err := svc.Create(context.Background(), UpsertRequest{
		ClientID: "client-1",
		Items: []LineItemRequest{
			{Description: "Forfait mariage", Quantity: 1, UnitPrice: 300},
			{Description: "Déplacement", Quantity: 2, UnitPrice: 25},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if quote.Subtotal != 350 || quote.Total != 350 {
		t.Fatalf("expected subtotal and total 350, got %d and %d", quote.Subtotal, quote.Total)
	}
	if quote.Status != StatusDraft {
		t.Fatalf("expected draft status, got %q", quote.Status)
	}
}

func TestUpdateQuoteStatus(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	quote, err := svc.Create(context.Background(), UpsertRequest{
		ClientID: "client-1",
		Items:    []LineItemRequest{{Description: "Forfait mariage", Quantity: 1, UnitPrice: 300}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(context.Background(), quote.ID, UpsertRequest{
		ClientID: "client-1",
		Status:   StatusAccepted,
		Items:    []LineItemRequest{{Description: "Forfait mariage", Quantity: 1, UnitPrice: 300}},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("expected accepted status, got %q", updated.Status)
	}
}

func TestUpdateQuoteUnknownID(t *testing.T) {
	svc := NewService(newFakeRepository(), time.UTC)

	_, err := svc.Update(context.Background(), "ghost", UpsertRequest{
		ClientID: "client-1",
		Items:    []LineItemRequest{{Description: "Forfait mariage", Quantity: 1, UnitPrice: 300}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
