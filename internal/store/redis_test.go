package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(rdb, time.Hour), mr
}

func testSession(id string) *game.Session {
	s := &game.Session{
		ID:             id,
		Status:         game.StatusWaiting,
		AvailableDecks: []string{"assassin", "dragon", "engine", "viking"},
		Turn:           1,
		Phase:          game.PhaseStandby,
		WinnerSlot:     -1,
		CreatedAt:      time.Now(),
	}
	s.Participants[0] = game.Participant{ConnID: "c1", ResumeKey: "rk1", Connected: true}
	for i := range s.Players {
		s.Players[i].LifePoints = game.StartingLife
	}
	return s
}

func TestRedisRoundTrip(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	s := testSession("aaa111")
	s.Players[0].Hand = []game.CardInstance{{InstanceID: "i1", CardID: "shadow-blade", Exhausted: true}}
	s.Players[0].Field[3] = &game.CardInstance{InstanceID: "i2", CardID: "berserker"}
	if err := r.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.Get(ctx, "aaa111")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.ID != s.ID || got.Status != s.Status || got.Phase != s.Phase {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Players[0].Hand) != 1 || !got.Players[0].Hand[0].Exhausted {
		t.Fatalf("hand lost: %+v", got.Players[0].Hand)
	}
	if got.Players[0].Field[3] == nil || got.Players[0].Field[3].CardID != "berserker" {
		t.Fatalf("field lost: %+v", got.Players[0].Field)
	}
	if got.Participants[0].ResumeKey != "rk1" {
		t.Fatalf("participant lost: %+v", got.Participants[0])
	}
}

func TestRedisCreateCollision(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	if err := r.Create(ctx, testSession("dup111")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Create(ctx, testSession("dup111")); err != ErrExists {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestRedisSaveOverwrites(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	s := testSession("bbb222")
	if err := r.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Status = game.StatusStarted
	s.Phase = game.PhaseMain
	if err := r.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := r.Get(ctx, "bbb222")
	if got.Status != game.StatusStarted || got.Phase != game.PhaseMain {
		t.Fatalf("save not applied: %+v", got)
	}
}

func TestRedisGetMissing(t *testing.T) {
	r, _ := newTestRedis(t)
	got, err := r.Get(context.Background(), "nothere")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got %v %v", got, err)
	}
}

func TestRedisDelete(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	if err := r.Create(ctx, testSession("ccc333")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Delete(ctx, "ccc333"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := r.Get(ctx, "ccc333"); got != nil {
		t.Fatalf("session survived delete")
	}
	live, err := r.ListActive(ctx)
	if err != nil || len(live) != 0 {
		t.Fatalf("index not cleaned: %v %v", live, err)
	}
}

func TestRedisListActive(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	if err := r.Create(ctx, testSession("one111")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Create(ctx, testSession("two222")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	live, err := r.ListActive(ctx)
	if err != nil || len(live) != 2 {
		t.Fatalf("ListActive: %d %v", len(live), err)
	}

	// a record expired under TTL leaves a dangling index entry; the listing
	// drops it and self-heals the set
	mr.Del(sessionKey("two222"))
	live, err = r.ListActive(ctx)
	if err != nil || len(live) != 1 || live[0].ID != "one111" {
		t.Fatalf("dangling entry not dropped: %v %v", live, err)
	}
	live, _ = r.ListActive(ctx)
	if len(live) != 1 {
		t.Fatalf("index not healed")
	}
}

func TestRedisRejectsCorruptRecord(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	mr.Set(sessionKey("bad111"), "{not json")
	if _, err := r.Get(ctx, "bad111"); err == nil {
		t.Fatalf("expected decode error for corrupt record")
	}

	mr.Set(sessionKey("bad222"), `{"session_id":"bad222","phase":"Twilight"}`)
	if _, err := r.Get(ctx, "bad222"); err == nil {
		t.Fatalf("expected decode error for unknown phase")
	}

	mr.Set(sessionKey("bad333"), `{"session_id":"bad333","players":[{"life_points":99},{"life_points":0}]}`)
	if _, err := r.Get(ctx, "bad333"); err == nil {
		t.Fatalf("expected decode error for out-of-range life")
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := parseRedisURL("redis://:secret@localhost:6379/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("parsed wrong: %+v", opts)
	}
	if _, err := parseRedisURL("http://localhost"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
