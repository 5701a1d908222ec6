package reset

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestStore_SaveAndConsume(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", "usr_1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	accountID, err := store.Consume(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if accountID != "usr_1" {
		t.Errorf("Expected usr_1, got %s", accountID)
	}
}

func TestStore_ConsumeTwice(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", "usr_1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Consume(ctx, "tok-1"); err != nil {
		t.Fatalf("First consume failed: %v", err)
	}
	if _, err := store.Consume(ctx, "tok-1"); err != ErrTokenNotFound {
		t.Errorf("Expected ErrTokenNotFound on second consume, got %v", err)
	}
}

func TestStore_ConsumeUnknown(t *testing.T) {
	store, _ := setupStore(t)

	if _, err := store.Consume(context.Background(), "never-issued"); err != ErrTokenNotFound {
		t.Errorf("Expected ErrTokenNotFound, got %v", err)
	}
}

func TestStore_OneLiveTokenPerAccount(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-old", "usr_1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "tok-new", "usr_1"); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	if _, err := store.Consume(ctx, "tok-old"); err != ErrTokenNotFound {
		t.Errorf("Expected the older token to be invalidated, got %v", err)
	}
	if accountID, err := store.Consume(ctx, "tok-new"); err != nil || accountID != "usr_1" {
		t.Errorf("Expected the newest token to work, got %s, %v", accountID, err)
	}
}

func TestStore_Expiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", "usr_1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, err := store.Consume(ctx, "tok-1"); err != ErrTokenNotFound {
		t.Errorf("Expected expired token to be gone, got %v", err)
	}
}
