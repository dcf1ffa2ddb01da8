package assets

import (
	"bytes"
	"embed"
	"image"
	"image/png"
	"sync"

	"golang.org/x/image/draw"
)

// Static asset keys
const (
	PausedKey  = "static:paused"
	NoTrackKey = "static:404"
)

//go:embed img/*.png
var static embed.FS

var (
	staticOnce   sync.Once
	pausedAsset  *Asset
	noTrackAsset *Asset
)

func loadStatic() {
	staticOnce.Do(func() {
		pausedAsset = &Asset{Key: PausedKey, Loaded: true, Image: mustDecode("img/paused.png")}
		noTrackAsset = &Asset{Key: NoTrackKey, Loaded: true, Image: mustDecode("img/404.png")}
	})
}

func mustDecode(name string) image.Image {
	b, err := static.ReadFile(name)
	if err != nil {
		panic(err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		panic(err)
	}
	return img
}

// Compose draws overlay on top of base, stretched to base's bounds.
func Compose(base, overlay image.Image) image.Image {
	if base == nil {
		return overlay
	}
	bounds := base.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), base, bounds.Min, draw.Src)
	if overlay != nil {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), overlay, overlay.Bounds(), draw.Over, nil)
	}
	return dst
}

// Scale resizes img to a size×size square.
func Scale(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
