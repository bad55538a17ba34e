package infra

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNewDB(t *testing.T) {
	dsn := os.Getenv("PARKDESK_TEST_DSN")
	if dsn == "" {
		t.Skip("PARKDESK_TEST_DSN not set; skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := NewDB(ctx, dsn)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	pool.Close()
}

func TestNewDB_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewDB(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestNewRedis(t *testing.T) {
	addr := os.Getenv("PARKDESK_REDIS_ADDR")
	if addr == "" {
		t.Skip("PARKDESK_REDIS_ADDR not set; skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := NewRedis(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	_ = client.Close()
}
