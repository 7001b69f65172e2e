package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newRedisStore(t *testing.T, idleTTL time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, idleTTL), mr
}

// backends runs fn against both implementations.
func backends(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("redis", func(t *testing.T) {
		store, _ := newRedisStore(t, 0)
		fn(t, store)
	})
}

func TestStoreRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		want := &model.Session{Token: "tok-7", Role: model.RoleStudent, UserID: "7"}

		if got, err := b.Get(ctx, "tab1"); err != nil || got != nil {
			t.Fatalf("empty tab: got %+v, %v", got, err)
		}
		if err := b.Set(ctx, "tab1", want); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := b.Get(ctx, "tab1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if *got != *want {
			t.Errorf("got %+v, want %+v", got, want)
		}
		if other, _ := b.Get(ctx, "tab2"); other != nil {
			t.Error("session leaked across tabs")
		}

		if err := b.Clear(ctx, "tab1"); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if got, _ := b.Get(ctx, "tab1"); got != nil {
			t.Errorf("after clear got %+v", got)
		}
	})
}

func TestStoreEmptyTokenIsAbsent(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		if err := b.Set(ctx, "tab", &model.Session{Role: model.RoleAdmin, UserID: "1"}); err != nil {
			t.Fatalf("set: %v", err)
		}
		if got, _ := b.Get(ctx, "tab"); got != nil {
			t.Errorf("token-less session reported present: %+v", got)
		}
	})
}

func TestStoreRejectsEmptyTab(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		if _, err := b.Get(ctx, ""); !errors.Is(err, ErrNoTab) {
			t.Errorf("Get: %v", err)
		}
		if err := b.Set(ctx, "", &model.Session{Token: "x"}); !errors.Is(err, ErrNoTab) {
			t.Errorf("Set: %v", err)
		}
		if err := b.PutFlash(ctx, "", Flash{}, time.Second); !errors.Is(err, ErrNoTab) {
			t.Errorf("PutFlash: %v", err)
		}
	})
}

func TestRedisStoreClearRemovesAllFields(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	ctx := context.Background()
	key := config.CacheKey.TabSessionKey("tab")

	if err := store.Set(ctx, "tab", &model.Session{Token: "t", Role: model.RoleAdmin, UserID: "1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	for _, f := range []string{config.SessionFieldToken, config.SessionFieldRole, config.SessionFieldUserID} {
		if mr.HGet(key, f) == "" {
			t.Errorf("field %s not persisted", f)
		}
	}

	if err := store.Clear(ctx, "tab"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(key) {
		t.Error("session hash still present after clear")
	}
}

func TestRedisStoreIdleTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_ = store.Set(ctx, "tab", &model.Session{Token: "t", Role: model.RoleStudent, UserID: "2"})
	mr.FastForward(59 * time.Minute)
	if got, _ := store.Get(ctx, "tab"); got == nil {
		t.Fatal("session expired early")
	}
	// The read above slid the expiry forward.
	mr.FastForward(59 * time.Minute)
	if got, _ := store.Get(ctx, "tab"); got == nil {
		t.Fatal("sliding expiry not applied")
	}
	mr.FastForward(61 * time.Minute)
	if got, _ := store.Get(ctx, "tab"); got != nil {
		t.Error("idle session should have expired")
	}
}

func TestRedisFlashExpires(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	ctx := context.Background()

	if err := store.PutFlash(ctx, "tab", Flash{Kind: FlashSuccess, Text: "Successfully enrolled!"}, 3*time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	f, err := store.Flash(ctx, "tab")
	if err != nil || f == nil || f.Text != "Successfully enrolled!" {
		t.Fatalf("flash = %+v, %v", f, err)
	}

	mr.FastForward(3 * time.Second)
	if f, _ := store.Flash(ctx, "tab"); f != nil {
		t.Errorf("flash survived its TTL: %+v", f)
	}
}

func TestMemoryFlashExpires(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	_ = store.PutFlash(ctx, "tab", Flash{Kind: FlashError, Text: "Failed to enroll: x"}, 3*time.Second)

	now = now.Add(2 * time.Second)
	if f, _ := store.Flash(ctx, "tab"); f == nil {
		t.Fatal("flash vanished before its TTL")
	}
	now = now.Add(time.Second)
	if f, _ := store.Flash(ctx, "tab"); f != nil {
		t.Errorf("flash still visible at TTL: %+v", f)
	}
}

func TestDemoSession(t *testing.T) {
	admin, err := NewDemoSession(model.RoleAdmin)
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if admin.UserID != "1" || admin.Role != model.RoleAdmin {
		t.Errorf("admin demo = %+v", admin)
	}

	student, err := NewDemoSession(model.RoleStudent)
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	if student.UserID != "2" || student.Role != model.RoleStudent {
		t.Errorf("student demo = %+v", student)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, _ := NewDemoSession(model.RoleStudent)
		if !strings.HasPrefix(s.Token, "demo-token-") || len(s.Token) != len("demo-token-")+9 {
			t.Fatalf("token shape %q", s.Token)
		}
		if seen[s.Token] {
			t.Fatalf("duplicate demo token %q", s.Token)
		}
		seen[s.Token] = true
	}

	if !IsDemo(admin) || IsDemo(&model.Session{Token: "tok-1"}) {
		t.Error("IsDemo misclassified")
	}
	if _, err := NewDemoSession("teacher"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("unknown role err = %v", err)
	}
}

func TestManagerLoginLogout(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		m := NewManager(b, 3*time.Second, metrics.NewWithRegistry(metrics.NewRegistry(false)), zerolog.Nop())

		if err := m.Login(ctx, "tab", &model.Session{Role: model.RoleAdmin}); !errors.Is(err, ErrEmptyToken) {
			t.Fatalf("empty token login err = %v", err)
		}

		for _, role := range []model.Role{model.RoleAdmin, model.RoleStudent} {
			s, _ := NewDemoSession(role)
			if err := m.Login(ctx, "tab", s); err != nil {
				t.Fatalf("login: %v", err)
			}
			if !m.StillCurrent(ctx, "tab", s.Token) {
				t.Error("fresh session not current")
			}
			if err := m.Logout(ctx, "tab"); err != nil {
				t.Fatalf("logout: %v", err)
			}
			if cur, _ := m.Current(ctx, "tab"); cur != nil {
				t.Errorf("%s: session survived logout: %+v", role, cur)
			}
			if m.StillCurrent(ctx, "tab", s.Token) {
				t.Error("logged out session still current")
			}
		}
	})
}

func TestManagerStillCurrentAfterSwitch(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Second, nil, zerolog.Nop())
	ctx := context.Background()

	_ = m.Login(ctx, "tab", &model.Session{Token: "first", Role: model.RoleStudent, UserID: "2"})
	_ = m.Login(ctx, "tab", &model.Session{Token: "second", Role: model.RoleAdmin, UserID: "1"})

	if m.StillCurrent(ctx, "tab", "first") {
		t.Error("replaced session reported current")
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		b, closeFn, err := Open(ctx, &config.Config{SessionBackend: config.SessionBackendMemory}, zerolog.Nop())
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer closeFn()
		if _, ok := b.(*MemoryStore); !ok {
			t.Errorf("backend = %T", b)
		}
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{SessionBackend: config.SessionBackendRedis, RedisURL: "redis://" + mr.Addr() + "/0"}
		b, closeFn, err := Open(ctx, cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer closeFn()
		if err := b.Set(ctx, "tab", &model.Session{Token: "t", Role: model.RoleStudent}); err != nil {
			t.Fatalf("set: %v", err)
		}
		if !mr.Exists(config.CacheKey.TabSessionKey("tab")) {
			t.Error("session not written to redis")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, _, err := Open(ctx, &config.Config{SessionBackend: "etcd"}, zerolog.Nop()); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
