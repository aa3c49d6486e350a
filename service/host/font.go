package host

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viant/docbridge/model/types"
)

// FontLoader makes a font usable for text content. Loading may block.
type FontLoader interface {
	Load(ctx context.Context, family, style string) error
}

// FontLoaderFunc adapts a function to FontLoader.
type FontLoaderFunc func(ctx context.Context, family, style string) error

func (f FontLoaderFunc) Load(ctx context.Context, family, style string) error {
	return f(ctx, family, style)
}

// StaticFontLoader accepts a fixed catalog of families; an empty catalog
// accepts any family. Delay simulates slow resource preparation.
type StaticFontLoader struct {
	Families []string
	Delay    time.Duration
}

func (l *StaticFontLoader) Load(ctx context.Context, family, style string) error {
	if l.Delay > 0 {
		select {
		case <-time.After(l.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if len(l.Families) == 0 {
		return nil
	}
	for _, candidate := range l.Families {
		if strings.EqualFold(candidate, family) {
			return nil
		}
	}
	return types.NewNotFoundError("font %v %v", family, style)
}

// FontCache records which fonts were prepared in the current session.
type FontCache struct {
	loader FontLoader
	mu     sync.Mutex
	loaded map[string]bool
}

func NewFontCache(loader FontLoader) *FontCache {
	return &FontCache{loader: loader, loaded: map[string]bool{}}
}

func fontKey(family, style string) string {
	return strings.ToLower(family) + "/" + strings.ToLower(style)
}

// Prepare loads the font once per session.
func (c *FontCache) Prepare(ctx context.Context, family, style string) error {
	if family == "" {
		return types.NewValidationError("font family is required")
	}
	key := fontKey(family, style)
	c.mu.Lock()
	ready := c.loaded[key]
	c.mu.Unlock()
	if ready {
		return nil
	}
	if err := c.loader.Load(ctx, family, style); err != nil {
		return err
	}
	c.mu.Lock()
	c.loaded[key] = true
	c.mu.Unlock()
	return nil
}

// Ready reports whether the font was prepared.
func (c *FontCache) Ready(family, style string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[fontKey(family, style)]
}

// Reset forgets prepared fonts.
func (c *FontCache) Reset() {
	c.mu.Lock()
	c.loaded = map[string]bool{}
	c.mu.Unlock()
}
