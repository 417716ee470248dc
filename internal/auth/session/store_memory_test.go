package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create then get returns pending session", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-1", time.Minute); err != nil {
			t.Fatalf("Create() error: %v", err)
		}

		sess, err := store.Get(ctx, "sess-1")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if sess.Status != StatusPending {
			t.Errorf("Status = %q, want %q", sess.Status, StatusPending)
		}
		if sess.UserID != "" || sess.Token != "" {
			t.Error("pending session must not carry user or token")
		}
	})

	t.Run("get unknown session", func(t *testing.T) {
		store := NewMemoryStore()
		if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("expired session behaves as absent and is deleted", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-exp", -time.Second); err != nil {
			t.Fatalf("Create() error: %v", err)
		}

		if _, err := store.Get(ctx, "sess-exp"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}

		store.mu.Lock()
		_, still := store.sessions["sess-exp"]
		store.mu.Unlock()
		if still {
			t.Error("expired session row was not deleted on read")
		}
	})

	t.Run("delete removes the session", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-del", time.Minute); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if err := store.Delete(ctx, "sess-del"); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := store.Get(ctx, "sess-del"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestMemoryStoreComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("complete transitions to completed with user and token", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-ok", time.Minute); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if err := store.Complete(ctx, "sess-ok", "user-1", "cli_token"); err != nil {
			t.Fatalf("Complete() error: %v", err)
		}

		sess, err := store.Get(ctx, "sess-ok")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if sess.Status != StatusCompleted {
			t.Errorf("Status = %q, want %q", sess.Status, StatusCompleted)
		}
		if sess.UserID != "user-1" || sess.Token != "cli_token" {
			t.Errorf("completed session = %+v, want user-1/cli_token", sess)
		}
	})

	t.Run("second complete is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-once", time.Minute); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if err := store.Complete(ctx, "sess-once", "user-1", "token-a"); err != nil {
			t.Fatalf("first Complete() error: %v", err)
		}
		if err := store.Complete(ctx, "sess-once", "user-2", "token-b"); !errors.Is(err, ErrAlreadyCompleted) {
			t.Errorf("second Complete() error = %v, want ErrAlreadyCompleted", err)
		}

		// The first completion must be preserved untouched.
		sess, err := store.Get(ctx, "sess-once")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if sess.UserID != "user-1" || sess.Token != "token-a" {
			t.Errorf("session = %+v, want first completion preserved", sess)
		}
	})

	t.Run("complete on unknown session", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Complete(ctx, "nope", "user-1", "token"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Complete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("complete on expired session", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-exp", -time.Second); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if err := store.Complete(ctx, "sess-exp", "user-1", "token"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Complete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("concurrent completes succeed exactly once", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Create(ctx, "sess-race", time.Minute); err != nil {
			t.Fatalf("Create() error: %v", err)
		}

		const attempts = 16
		var wg sync.WaitGroup
		results := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- store.Complete(ctx, "sess-race", "user-1", "token")
			}()
		}
		wg.Wait()
		close(results)

		successes := 0
		for err := range results {
			if err == nil {
				successes++
			} else if !errors.Is(err, ErrAlreadyCompleted) {
				t.Errorf("unexpected Complete() error: %v", err)
			}
		}
		if successes != 1 {
			t.Errorf("successes = %d, want exactly 1", successes)
		}
	})
}
