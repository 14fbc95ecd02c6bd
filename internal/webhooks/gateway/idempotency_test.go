package gatewaywebhook

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	setNXResult bool
	setNXError  error
	lastKey     string
	lastTTL     time.Duration
	lastDeleted string
}

func (f *fakeStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastTTL = ttl
	return f.setNXResult, f.setNXError
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "sr:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	return nil
}

func TestCheckAndMark_FirstDelivery(t *testing.T) {
	store := &fakeStore{setNXResult: true}
	guard, err := NewIdempotencyGuard(store, 30*24*time.Hour, "gateway")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}

	already, err := guard.CheckAndMark(context.Background(), "evt-100")
	if err != nil {
		t.Fatalf("CheckAndMark: %v", err)
	}
	if already {
		t.Fatalf("expected first delivery to return false, got true")
	}
	if store.lastKey != "sr:idempotency:gateway:evt-100" {
		t.Fatalf("unexpected key: %q", store.lastKey)
	}
	if store.lastTTL != 30*24*time.Hour {
		t.Fatalf("unexpected ttl: %v", store.lastTTL)
	}
}

func TestCheckAndMark_Redelivery(t *testing.T) {
	store := &fakeStore{setNXResult: false}
	guard, err := NewIdempotencyGuard(store, time.Hour, "gateway")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}

	already, err := guard.CheckAndMark(context.Background(), "evt-101")
	if err != nil {
		t.Fatalf("CheckAndMark: %v", err)
	}
	if !already {
		t.Fatalf("expected redelivery to return true, got false")
	}
}

func TestCheckAndMark_StoreError(t *testing.T) {
	store := &fakeStore{setNXError: errors.New("boom")}
	guard, err := NewIdempotencyGuard(store, time.Hour, "gateway")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt-102"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteReleasesMark(t *testing.T) {
	store := &fakeStore{}
	guard, err := NewIdempotencyGuard(store, time.Hour, "gateway")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}

	if err := guard.Delete(context.Background(), "evt-103"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.lastDeleted != "sr:idempotency:gateway:evt-103" {
		t.Fatalf("unexpected deleted key %q", store.lastDeleted)
	}
}
