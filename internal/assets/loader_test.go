package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/nowplaying/internal/shared"
	tu "github.com/desertthunder/nowplaying/internal/testing"
)

func encoded(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("failed to encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestHTTPLoader(t *testing.T) {
	for _, format := range []string{"png", "jpeg"} {
		t.Run("decodes and scales "+format, func(t *testing.T) {
			body := encoded(t, format, 300, 300)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(body)
			}))
			defer server.Close()

			l := NewHTTPLoader(HTTPLoaderOpts{RateLimit: 100})
			img, err := l.Load(context.Background(), server.URL+"/cover")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if b := img.Bounds(); b.Dx() != CoverSize || b.Dy() != CoverSize {
				t.Errorf("expected %dx%d, got %v", CoverSize, CoverSize, b)
			}
		})
	}

	t.Run("non-2xx fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewHTTPLoader(HTTPLoaderOpts{}).Load(context.Background(), server.URL)
		if !errors.Is(err, shared.ErrAssetLoad) {
			t.Errorf("expected ErrAssetLoad, got %v", err)
		}
	})

	t.Run("garbage body fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not an image"))
		}))
		defer server.Close()

		_, err := NewHTTPLoader(HTTPLoaderOpts{}).Load(context.Background(), server.URL)
		if !errors.Is(err, shared.ErrAssetLoad) {
			t.Errorf("expected ErrAssetLoad, got %v", err)
		}
	})

	t.Run("network error fails", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		_, err := NewHTTPLoader(HTTPLoaderOpts{HTTPClient: client}).Load(context.Background(), "http://example.invalid/a.jpg")
		if !errors.Is(err, shared.ErrAssetLoad) {
			t.Errorf("expected ErrAssetLoad, got %v", err)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		var hits atomic.Int32
		body := encoded(t, "png", 10, 10)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write(body)
		}))
		defer server.Close()

		l := NewHTTPLoader(HTTPLoaderOpts{RateLimit: 0.001})
		if _, err := l.Load(context.Background(), server.URL); err != nil {
			t.Fatalf("first Load failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := l.Load(ctx, server.URL); err == nil {
			t.Error("expected second Load to be refused by the limiter")
		}
		if hits.Load() != 1 {
			t.Errorf("expected 1 request, got %d", hits.Load())
		}
	})

	t.Run("works with cache", func(t *testing.T) {
		body := encoded(t, "png", 64, 64)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(body)
		}))
		defer server.Close()

		c := NewCache(context.Background(), NewHTTPLoader(HTTPLoaderOpts{RateLimit: 100}), nil)
		defer c.Close()

		url := server.URL + "/ab67616d00001e02"
		tu.Eventually(t, 2*time.Second, loaded(c, url), "cover to load over http")
	})
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, CoverSize, CoverSize))
	if Scale(src, CoverSize) != image.Image(src) {
		t.Error("expected correctly sized image to be returned unchanged")
	}
}
