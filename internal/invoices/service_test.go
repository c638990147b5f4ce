package invoices

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
	byID      map[string]Invoice
	insertErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[string]Invoice)}
}

func (f *fakeRepository) Insert(ctx context.Context, invoice Invoice) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.byID[invoice.ID] = invoice
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, set bson.M) (Invoice, error) {
	inv, ok := f.byID[id]
	if !ok {
		return Invoice{}, mongo.ErrNoDocuments
	}
	if v, ok := set["status"]; ok {
		inv.Status = v.(string)
	}
	if v, ok := set["subtotal"]; ok {
		inv.Subtotal = v.(int)
	}
	if v, ok := set["total"]; ok {
		inv.Total = v.(int)
	}
	if v, ok := set["items"]; ok {
		inv.Items = v.([]LineItem)
	}
	f.byID[id] = inv
	return inv, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (Invoice, error) {
	inv, ok := f.byID[id]
	if !ok {
		return Invoice{}, mongo.ErrNoDocuments
	}
	return inv, nil
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Invoice, error) {
	items := make([]Invoice, 0, len(f.byID))
	for _, inv := range f.byID {
		items = append(items, inv)
	}
	return items, nil
}

func (f *fakeRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeRepository) CountYear(ctx context.Context, year int) (int64, error) {
	prefix := fmt.Sprintf("FA-%04d-", year)
	var n int64
	for _, inv := range f.byID {
		if strings.HasPrefix(inv.Number, prefix) {
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, time.UTC)
}

func TestCreateComputesTotals(t *testing.T) {
	svc := newTestService(newFakeRepository())

	invoice, err := svc.Create(context.Background(), UpsertRequest{
		ClientID: "client-1",
		Items: []LineItemRequest{
			{Description: "Maquillage mariée", Quantity: 1, UnitPrice: 150},
			{Description: "Essai", Quantity: 2, UnitPrice: 40},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if invoice.Items[0].Total != 150 || invoice.Items[1].Total != 80 {
		t.Fatalf("unexpected line totals: %+v", invoice.Items)
	}
	if invoice.Subtotal != 230 || invoice.Total != 230 {
		t.Fatalf("expected subtotal and total 230, got %d and %d", invoice.Subtotal, invoice.Total)
	}
	if invoice.Status != StatusDraft {
		t.Fatalf("expected draft status, got %q", invoice.Status)
	}
}

func TestCreateSequentialNumbers(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	year := time.Now().UTC().Year()
	for i := 1; i <= 3; i++ {
		invoice, err := svc.Create(context.Background(), UpsertRequest{
			ClientID: "client-1",
			Items:    []LineItemRequest{{Description: "Prestation", Quantity: 1, UnitPrice: 50}},
		})
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		want := fmt.Sprintf("FA-%04d-%04d", year, i)
		if invoice.Number != want {
			t.Fatalf("expected number %s, got %s", want, invoice.Number)
		}
	}
}

func TestUpdateRecomputesTotals(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	invoice, err := svc.Create(context.Background(), UpsertRequest{
		ClientID: "client-1",
		Items:    []LineItemRequest{{Description: "Prestation", Quantity: 1, UnitPrice: 50}},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(context.Background(), invoice.ID, UpsertRequest{
		ClientID: "client-1",
		Status:   StatusSent,
		Items:    []LineItemRequest{{Description: "Prestation", Quantity: 3, UnitPrice: 50}},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Subtotal != 150 || updated.Total != 150 {
		t.Fatalf("expected subtotal and total 150, got %d and %d", updated.Subtotal, updated.Total)
	}
	if updated.Status != StatusSent {
		t.Fatalf("expected sent status, got %q", updated.Status)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Update(context.Background(), "ghost", UpsertRequest{
		ClientID: "client-1",
		Items:    []LineItemRequest{{Description: "Prestation", Quantity: 1, UnitPrice: 50}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	svc := newTestService(newFakeRepository())

	if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
