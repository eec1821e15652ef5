package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"cvstudio/internal/config"
)

// Cache lazily fetches the branding assets the renderer embeds (logo image,
// regular and bold font files) and keeps the byte buffers for the lifetime
// of the process. Failed fetches are not cached, so a transient outage is
// retried on the next render.
type Cache struct {
	mu     sync.Mutex
	client *http.Client

	logoSource    string
	regularSource string
	boldSource    string

	logo    []byte
	regular []byte
	bold    []byte
}

// NewCache builds a cache over the configured asset locations. Sources may
// be http(s) URLs or local file paths.
func NewCache(cfg config.AssetsConfig) *Cache {
	return &Cache{
		client:        &http.Client{Timeout: 10 * time.Second},
		logoSource:    strings.TrimSpace(cfg.LogoPath),
		regularSource: strings.TrimSpace(cfg.FontRegularPath),
		boldSource:    strings.TrimSpace(cfg.FontBoldPath),
	}
}

// Fonts returns the regular and bold font buffers, fetching both on first
// use. An error here is a recoverable degradation: callers fall back to a
// built-in font.
func (c *Cache) Fonts(ctx context.Context) (regular, bold []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.regular != nil && c.bold != nil {
		return c.regular, c.bold, nil
	}

	regular, err = c.fetch(ctx, c.regularSource)
	if err != nil {
		return nil, nil, fmt.Errorf("load regular font: %w", err)
	}
	bold, err = c.fetch(ctx, c.boldSource)
	if err != nil {
		return nil, nil, fmt.Errorf("load bold font: %w", err)
	}

	c.regular, c.bold = regular, bold
	return regular, bold, nil
}

// Logo returns the logo image bytes, fetching on first use. An error means
// the document is rendered without the logo.
func (c *Cache) Logo(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.logo != nil {
		return c.logo, nil
	}

	data, err := c.fetch(ctx, c.logoSource)
	if err != nil {
		return nil, fmt.Errorf("load logo: %w", err)
	}
	c.logo = data
	return data, nil
}

func (c *Cache) fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("asset source not configured")
	}

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", source, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %d", source, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", source, err)
	}
	return data, nil
}
