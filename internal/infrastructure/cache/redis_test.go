package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(client, "scambait:", logger.NewDefault()), mr
}

func TestGetSessionMissing(t *testing.T) {
	c, _ := newTestCache(t)

	session, err := c.GetSession(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("missing session must not error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil session, got %+v", session)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	in := &models.ConversationSession{
		ID:        "conv-1",
		Status:    models.SessionActive,
		Persona:   models.PersonaElderly,
		Phase:     models.PhaseInitialExtraction,
		Category:  models.CategoryBank,
		TurnCount: 3,
		Intelligence: models.Intelligence{
			UPIIDs: []string{"scammer@upi"},
		},
		History: []models.Message{
			{Sender: models.SenderScammer, Text: "pay now", Timestamp: now},
		},
		StartedAt: now,
		UpdatedAt: now,
	}

	if err := c.PutSession(ctx, in, time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	out, err := c.GetSession(ctx, "conv-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if out == nil {
		t.Fatal("expected session, got nil")
	}
	if out.TurnCount != 3 || out.Persona != models.PersonaElderly || out.Phase != models.PhaseInitialExtraction {
		t.Errorf("session did not survive the round trip: %+v", out)
	}
	if len(out.Intelligence.UPIIDs) != 1 || out.Intelligence.UPIIDs[0] != "scammer@upi" {
		t.Errorf("intelligence did not survive the round trip: %+v", out.Intelligence)
	}
}

func TestSessionTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.PutSession(ctx, &models.ConversationSession{ID: "conv-ttl"}, time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	session, err := c.GetSession(ctx, "conv-ttl")
	if err != nil {
		t.Fatalf("get after expiry must not error: %v", err)
	}
	if session != nil {
		t.Fatal("session should have expired")
	}
}

func TestSessionLock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireSessionLock(ctx, "conv-1", time.Minute)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if !ok {
		t.Fatal("first acquire should succeed")
	}

	ok, err = c.AcquireSessionLock(ctx, "conv-1", time.Minute)
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if ok {
		t.Fatal("second acquire should be refused while the lock is held")
	}

	if err := c.ReleaseSessionLock(ctx, "conv-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, err = c.AcquireSessionLock(ctx, "conv-1", time.Minute)
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	if !ok {
		t.Fatal("lock should be free after release")
	}

	// locks expire on their own if a holder dies
	mr.FastForward(2 * time.Minute)
	ok, err = c.AcquireSessionLock(ctx, "conv-1", time.Minute)
	if err != nil {
		t.Fatalf("acquire after expiry failed: %v", err)
	}
	if !ok {
		t.Fatal("expired lock should be acquirable")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := c.CheckRateLimit(ctx, "client-1", 3, time.Minute)
		if err != nil {
			t.Fatalf("check %d failed: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	allowed, remaining, _, err := c.CheckRateLimit(ctx, "client-1", 3, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if allowed {
		t.Fatal("fourth request should be refused")
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}
