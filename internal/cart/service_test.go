package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
)

type memoryKV struct {
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (m *memoryKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memoryKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) CartKey(storeID, sessionID string) string {
	return "cart:" + storeID + ":" + sessionID
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(newMemoryKV(), time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func line(id string, price int64, qty int) Line {
	return Line{ProductID: id, Name: "Produto " + id, Price: decimal.NewFromInt(price), Quantity: qty, Reference: "R-" + id}
}

func TestAddMergesDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 2)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	current, err := svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 3))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if len(current.Lines) != 1 {
		t.Fatalf("cart has %d lines, want 1", len(current.Lines))
	}
	if current.Lines[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", current.Lines[0].Quantity)
	}
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	svc := newTestService(t)

	current, err := svc.Add(context.Background(), "store-1", "sess-1", line("p1", 10, 0))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if current.Lines[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", current.Lines[0].Quantity)
	}
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 3))
	current, err := svc.UpdateQuantity(ctx, "store-1", "sess-1", "p1", -100)
	if err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}

	if len(current.Lines) != 1 {
		t.Fatal("clamping must never remove the line")
	}
	if current.Lines[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", current.Lines[0].Quantity)
	}
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateQuantity(context.Background(), "store-1", "sess-1", "ghost", 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("UpdateQuantity() error = %v, want not found", err)
	}
}

func TestRemoveDeletesLine(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 5))
	_, _ = svc.Add(ctx, "store-1", "sess-1", line("p2", 20, 1))

	current, err := svc.Remove(ctx, "store-1", "sess-1", "p1")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(current.Lines) != 1 || current.Lines[0].ProductID != "p2" {
		t.Fatalf("cart = %+v", current.Lines)
	}
}

func TestTotalAndCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "store-1", "sess-1", Line{ProductID: "p1", Price: decimal.RequireFromString("19.90"), Quantity: 2})
	current, _ := svc.Add(ctx, "store-1", "sess-1", Line{ProductID: "p2", Price: decimal.RequireFromString("5.50"), Quantity: 3})

	if want := decimal.RequireFromString("56.30"); !current.Total().Equal(want) {
		t.Fatalf("Total() = %s, want %s", current.Total(), want)
	}
	if current.Count() != 5 {
		t.Fatalf("Count() = %d, want 5", current.Count())
	}
}

func TestReplaceSwapsCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 2))
	current, err := svc.Replace(ctx, "store-1", "sess-1", []Line{line("p9", 30, 1)})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if len(current.Lines) != 1 || current.Lines[0].ProductID != "p9" {
		t.Fatalf("Replace() kept old lines: %+v", current.Lines)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 2))
	if err := svc.Clear(ctx, "store-1", "sess-1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	current, err := svc.Get(ctx, "store-1", "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !current.Empty() {
		t.Fatalf("cart not empty after clear: %+v", current.Lines)
	}
}

func TestSessionsAreNamespaced(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "store-1", "sess-1", line("p1", 10, 1))
	other, err := svc.Get(ctx, "store-2", "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !other.Empty() {
		t.Fatal("carts from different stores must not collide")
	}
}
