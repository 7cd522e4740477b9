package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return s, client
}

func TestCacheStore_ActiveSettingsRoundTrip(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewCacheStore(client)
	ctx := context.Background()

	got, err := cache.GetActiveSettings(ctx)
	if err != nil {
		t.Fatalf("GetActiveSettings error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected cache miss, got %+v", got)
	}

	settings := &domain.CommissionSettings{
		ID:                   "set-1",
		CommissionPercentage: decimal.RequireFromString("12.5"),
		MinCommission:        300,
		IsActive:             true,
		CreatedAt:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:            time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := cache.SetActiveSettings(ctx, settings); err != nil {
		t.Fatalf("SetActiveSettings error: %v", err)
	}

	if ttl := s.TTL(activeSettingsKey); ttl != SettingsCacheTTL {
		t.Errorf("expected ttl %v, got %v", SettingsCacheTTL, ttl)
	}

	got, err = cache.GetActiveSettings(ctx)
	if err != nil {
		t.Fatalf("GetActiveSettings error: %v", err)
	}
	if got == nil || got.ID != "set-1" || got.MinCommission != 300 {
		t.Fatalf("unexpected settings from cache: %+v", got)
	}
	if !got.CommissionPercentage.Equal(settings.CommissionPercentage) {
		t.Errorf("expected %s, got %s", settings.CommissionPercentage, got.CommissionPercentage)
	}

	if err := cache.InvalidateActiveSettings(ctx); err != nil {
		t.Fatalf("InvalidateActiveSettings error: %v", err)
	}
	got, err = cache.GetActiveSettings(ctx)
	if err != nil {
		t.Fatalf("GetActiveSettings error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss after invalidate, got %+v", got)
	}
}

func TestCacheStore_ExpiresAfterTTL(t *testing.T) {
	s, client := newTestClient(t)
	cache := NewCacheStore(client)
	ctx := context.Background()

	if err := cache.SetActiveSettings(ctx, &domain.CommissionSettings{ID: "set-1", CommissionPercentage: decimal.NewFromInt(15)}); err != nil {
		t.Fatalf("SetActiveSettings error: %v", err)
	}

	s.FastForward(SettingsCacheTTL + time.Second)

	got, err := cache.GetActiveSettings(ctx)
	if err != nil {
		t.Fatalf("GetActiveSettings error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired entry, got %+v", got)
	}
}

func TestLockStore_CheckoutLock(t *testing.T) {
	s, client := newTestClient(t)
	locks := NewLockStore(client)
	ctx := context.Background()

	token, ok, err := locks.AcquireCheckoutLock(ctx, "trip-1", 10*time.Second)
	if err != nil || !ok || token == "" {
		t.Fatalf("expected first acquire to succeed, token=%q ok=%v err=%v", token, ok, err)
	}

	_, ok, err = locks.AcquireCheckoutLock(ctx, "trip-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected second acquire to fail while lock is held")
	}

	// Other trips are independent.
	_, ok, err = locks.AcquireCheckoutLock(ctx, "trip-2", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected lock for another trip, ok=%v err=%v", ok, err)
	}

	if err := locks.ReleaseCheckoutLock(ctx, "trip-1", token); err != nil {
		t.Fatalf("release error: %v", err)
	}
	_, ok, err = locks.AcquireCheckoutLock(ctx, "trip-1", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected acquire after release, ok=%v err=%v", ok, err)
	}

	s.FastForward(11 * time.Second)
	if s.Exists("lock:checkout:trip-2") {
		t.Error("expected trip-2 lock to expire")
	}
}

func TestLockStore_StaleReleaseKeepsNewOwnersLock(t *testing.T) {
	s, client := newTestClient(t)
	locks := NewLockStore(client)
	ctx := context.Background()

	stale, ok, err := locks.AcquireCheckoutLock(ctx, "trip-1", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}

	// The first holder outlives its TTL and a second request takes the lock.
	s.FastForward(11 * time.Second)
	current, ok, err := locks.AcquireCheckoutLock(ctx, "trip-1", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected acquire after expiry, ok=%v err=%v", ok, err)
	}
	if current == stale {
		t.Fatal("expected a fresh token for the new holder")
	}

	if err := locks.ReleaseCheckoutLock(ctx, "trip-1", stale); err != nil {
		t.Fatalf("release error: %v", err)
	}
	if got, _ := s.Get("lock:checkout:trip-1"); got != current {
		t.Fatalf("expected lock to stay with the new holder, got %q", got)
	}
	_, ok, _ = locks.AcquireCheckoutLock(ctx, "trip-1", 10*time.Second)
	if ok {
		t.Error("expected lock to still be held after a stale release")
	}

	if err := locks.ReleaseCheckoutLock(ctx, "trip-1", current); err != nil {
		t.Fatalf("release error: %v", err)
	}
	if s.Exists("lock:checkout:trip-1") {
		t.Error("expected owner release to delete the lock")
	}
}
