package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/nowplaying/internal/shared"
	"golang.org/x/time/rate"
)

// CoverSize is the edge length, in pixels, covers are scaled to.
const CoverSize = 100

const maxCoverBytes = 4 << 20

// HTTPLoaderOpts contains optional settings for [NewHTTPLoader].
type HTTPLoaderOpts struct {
	HTTPClient *http.Client // Defaults to a client with a 10s timeout
	RateLimit  float64      // Downloads per second; defaults to 2
	Size       int          // Defaults to [CoverSize]
}

// HTTPLoader downloads covers over HTTP, rate limited, and scales them to a square.
type HTTPLoader struct {
	client  *http.Client
	limiter *rate.Limiter
	size    int
}

func NewHTTPLoader(opts HTTPLoaderOpts) *HTTPLoader {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}
	if opts.Size <= 0 {
		opts.Size = CoverSize
	}
	return &HTTPLoader{
		client:  opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		size:    opts.Size,
	}
}

// Load implements [Loader].
func (l *HTTPLoader) Load(ctx context.Context, url string) (image.Image, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAssetLoad, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", shared.ErrAssetLoad, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAssetLoad, shared.WrapTimeout(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAssetLoad, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", shared.ErrAssetLoad, err)
	}

	return Scale(img, l.size), nil
}
