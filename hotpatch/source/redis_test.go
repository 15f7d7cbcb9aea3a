package source

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/momentics/clientconnect/api"
)

func TestDecodeHash(t *testing.T) {
	defs, err := decodeHash(map[string]string{
		"temp-session/sessionPUT": `{"endpoint":"https://temp-session-api.example.com/v1","apiKey":"k","payload":"{}"}`,
		"lobby/join":              `{"namespace":"lobby","api":"join","endpoint":"https://lobby.example.com"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions", len(defs))
	}
	if defs[0].Namespace != "lobby" || defs[1].Namespace != "temp-session" {
		t.Fatalf("definitions not ordered by field: %+v", defs)
	}
	if defs[1].APIName != "sessionPUT" || defs[1].APIKey != "k" {
		t.Errorf("field name fallback failed: %+v", defs[1])
	}
}

func TestDecodeHashErrors(t *testing.T) {
	if _, err := decodeHash(map[string]string{"a/b": "not json"}); err == nil {
		t.Error("expected decode error")
	}
	if _, err := decodeHash(map[string]string{"nofield": `{}`}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRedisOptions(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer func() { _ = rdb.Close() }()

	r := NewRedis(rdb, WithKey("  game:hotpatches "))
	if r.key != "game:hotpatches" {
		t.Fatalf("unexpected key %q", r.key)
	}
	if NewRedis(rdb).key != DefaultRedisKey {
		t.Fatal("default key not applied")
	}

	var nilSource *Redis
	if _, err := nilSource.Load(context.Background()); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
