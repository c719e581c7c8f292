package store

import (
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	reliosdk "github.com/relio-ai/relio-sdk-go"
)

func newTestRedisStore(t *testing.T, cfg ...RedisStoreConfig) *RedisContactStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisContactStore(client, cfg...)
}

func redisSnapshot(id string, intimacy int) *reliosdk.ContactSnapshot {
	cfg := reliosdk.DefaultIntimacyConfig()
	c := reliosdk.NewContact(id, "小明", reliosdk.CategoryFriend, cfg, time.Now())
	c.Intimacy = intimacy
	return &reliosdk.ContactSnapshot{
		Contact: c,
		State: &reliosdk.RelationshipState{
			ContactID:    id,
			CurrentStage: reliosdk.StageBuilding,
		},
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s := newTestRedisStore(t)

	if snap, err := s.Load("missing"); err != nil || snap != nil {
		t.Fatalf("expected (nil, nil) for missing contact, got (%v, %v)", snap, err)
	}

	if err := s.Save(redisSnapshot("c1", 42)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	snap, err := s.Load("c1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap == nil || snap.Contact.Intimacy != 42 {
		t.Fatalf("round trip lost data: %+v", snap)
	}
	if snap.State == nil || snap.State.CurrentStage != reliosdk.StageBuilding {
		t.Errorf("relationship state lost: %+v", snap.State)
	}
}

func TestRedisStore_SaveReplaces(t *testing.T) {
	s := newTestRedisStore(t)
	if err := s.Save(redisSnapshot("c1", 42)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(redisSnapshot("c1", 77)); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Load("c1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Contact.Intimacy != 77 {
		t.Errorf("expected 77, got %d", snap.Contact.Intimacy)
	}
}

func TestRedisStore_DeleteAndList(t *testing.T) {
	s := newTestRedisStore(t)
	if err := s.Save(redisSnapshot("c1", 42)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(redisSnapshot("c2", 50)); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Errorf("expected [c1 c2], got %v", ids)
	}

	if err := s.Delete("c1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("c1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if snap, _ := s.Load("c1"); snap != nil {
		t.Error("expected c1 gone after delete")
	}
}

func TestRedisStore_SaveRejectsMissingID(t *testing.T) {
	s := newTestRedisStore(t)
	if err := s.Save(nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
	if err := s.Save(&reliosdk.ContactSnapshot{Contact: &reliosdk.Contact{}}); err == nil {
		t.Error("expected error for missing contact id")
	}
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	a := NewRedisContactStore(client, RedisStoreConfig{Prefix: "appA"})
	b := NewRedisContactStore(client, RedisStoreConfig{Prefix: "appB"})

	if err := a.Save(redisSnapshot("c1", 42)); err != nil {
		t.Fatal(err)
	}
	ids, err := b.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("prefix leak: %v", ids)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisContactStore(client, RedisStoreConfig{TTL: time.Minute})
	if err := s.Save(redisSnapshot("c1", 42)); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)
	snap, err := s.Load("c1")
	if err != nil {
		t.Fatalf("Load after expiry failed: %v", err)
	}
	if snap != nil {
		t.Error("expected snapshot expired")
	}
}
