package customers

import (
	"context"
	"testing"
	"time"

	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type memoryKV struct {
	data map[string]string
}

func newMemoryKV() *memoryKV { return &memoryKV{data: map[string]string{}} }

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

func (m *memoryKV) CustomerKey(storeID, sessionID string) string {
	return "customer:" + storeID + ":" + sessionID
}

func TestRememberAndRecognize(t *testing.T) {
	svc, err := NewService(newMemoryKV(), time.Hour)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	ctx := context.Background()

	customer := types.CustomerInfo{Name: "Ana Souza", Phone: "+5511999990000", Email: "ana@example.com"}
	if err := svc.Remember(ctx, "store-1", "sess-1", customer); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}

	got, err := svc.Recognize(ctx, "store-1", "sess-1")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got == nil || got.Name != customer.Name || got.Phone != customer.Phone {
		t.Fatalf("Recognize() = %+v", got)
	}

	// Different tenant, same session id: no recognition.
	other, err := svc.Recognize(ctx, "store-2", "sess-1")
	if err != nil || other != nil {
		t.Fatalf("Recognize() across tenants = %+v, %v", other, err)
	}
}

func TestRememberRequiresContactFields(t *testing.T) {
	svc, _ := NewService(newMemoryKV(), time.Hour)

	err := svc.Remember(context.Background(), "store-1", "sess-1", types.CustomerInfo{Name: "Ana"})
	if err == nil {
		t.Fatal("Remember() should reject an incomplete customer")
	}
}

func TestForget(t *testing.T) {
	svc, _ := NewService(newMemoryKV(), time.Hour)
	ctx := context.Background()

	_ = svc.Remember(ctx, "store-1", "sess-1", types.CustomerInfo{Name: "Ana", Phone: "11999990000"})
	if err := svc.Forget(ctx, "store-1", "sess-1"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}

	got, err := svc.Recognize(ctx, "store-1", "sess-1")
	if err != nil || got != nil {
		t.Fatalf("Recognize() after forget = %+v, %v", got, err)
	}
}
