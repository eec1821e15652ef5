package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"cvstudio/internal/config"
)

func TestFontsFetchedOnceAndCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("font-bytes-" + r.URL.Path))
	}))
	defer srv.Close()

	cache := NewCache(config.AssetsConfig{
		FontRegularPath: srv.URL + "/regular.ttf",
		FontBoldPath:    srv.URL + "/bold.ttf",
	})

	ctx := context.Background()
	regular, bold, err := cache.Fonts(ctx)
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	if string(regular) != "font-bytes-/regular.ttf" || string(bold) != "font-bytes-/bold.ttf" {
		t.Fatalf("unexpected font payloads: %q, %q", regular, bold)
	}

	if _, _, err := cache.Fonts(ctx); err != nil {
		t.Fatalf("cached fonts: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2 (one per font)", got)
	}
}

func TestFetchFailureIsNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("logo-bytes"))
	}))
	defer srv.Close()

	cache := NewCache(config.AssetsConfig{LogoPath: srv.URL + "/logo.png"})

	ctx := context.Background()
	if _, err := cache.Logo(ctx); err == nil {
		t.Fatal("expected error while server is failing")
	}

	fail.Store(false)
	data, err := cache.Logo(ctx)
	if err != nil {
		t.Fatalf("logo after recovery: %v", err)
	}
	if string(data) != "logo-bytes" {
		t.Fatalf("logo = %q", data)
	}
}

func TestLocalFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(path, []byte("local-logo"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cache := NewCache(config.AssetsConfig{LogoPath: path})
	data, err := cache.Logo(context.Background())
	if err != nil {
		t.Fatalf("logo: %v", err)
	}
	if string(data) != "local-logo" {
		t.Fatalf("logo = %q", data)
	}
}

func TestUnconfiguredSourceErrors(t *testing.T) {
	cache := NewCache(config.AssetsConfig{})
	if _, err := cache.Logo(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured logo source")
	}
	if _, _, err := cache.Fonts(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured font sources")
	}
}
