package assets

import (
	"context"
	"image"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// Asset is a cover image keyed by the URL it was loaded from.
//
// Loaded is false for the placeholder returned while the first cover is still loading.
type Asset struct {
	Key    string
	Loaded bool
	Image  image.Image
}

// Loader fetches and decodes the image at url.
type Loader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// Cache holds the most recently displayed cover and at most one outstanding load per URL.
//
// Resolve is cheap and safe to call on every frame.
type Cache struct {
	loader Loader
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	current     *Asset
	placeholder *Asset
	wanted      string
	failed      string
	pending     map[string]bool
}

// NewCache creates a Cache whose loads run under ctx until Close.
func NewCache(ctx context.Context, loader Loader, logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	loadStatic()

	ctx, cancel := context.WithCancel(ctx)
	return &Cache{
		loader:  loader,
		logger:  shared.WithLogger(logger, "component", "assets"),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]bool),
	}
}

// Resolve returns the cover for url.
//
// If url is the cover already held, it is returned as is. Otherwise a load is started (unless one for url is already
// running) and the previous cover is returned until it completes, or a not-yet-loaded placeholder when there is no
// previous cover. A URL whose load failed keeps the previous cover, or [Cache.NoTrack] when there is none, and is
// not loaded again until a different URL is requested. An empty url resolves to [Cache.NoTrack].
func (c *Cache) Resolve(url string) *Asset {
	if url == "" {
		return noTrackAsset
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.Key == url {
		// Switching back to the held cover abandons any replacement still loading.
		c.wanted = url
		c.failed = ""
		return c.current
	}

	if url != c.wanted {
		c.wanted = url
		c.failed = ""
		c.placeholder = &Asset{Key: url}
		c.startLocked(url)
	}

	if c.current != nil {
		return c.current
	}
	if c.failed == url {
		return noTrackAsset
	}
	return c.placeholder
}

func (c *Cache) startLocked(url string) {
	if c.pending[url] || c.ctx.Err() != nil {
		return
	}
	c.pending[url] = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		img, err := c.loader.Load(c.ctx, url)
		c.finish(url, img, err)
	}()
}

func (c *Cache) finish(url string, img image.Image, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, url)

	switch {
	case url != c.wanted:
		c.logger.Debug("discarding stale cover", "url", url)
	case err != nil:
		c.failed = url
		c.logger.Warn("cover load failed", "url", url, "error", err)
	default:
		c.current = &Asset{Key: url, Loaded: true, Image: img}
		c.logger.Debug("cover loaded", "url", url)
	}
}

// Current returns the cover currently held, or nil.
func (c *Cache) Current() *Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Paused returns the static paused overlay.
func (c *Cache) Paused() *Asset {
	return pausedAsset
}

// NoTrack returns the static fallback cover.
func (c *Cache) NoTrack() *Asset {
	return noTrackAsset
}

// Close cancels outstanding loads and waits for them to return.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}
