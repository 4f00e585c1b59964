package quantize

import (
	"context"
	"image"
	"image/color"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheSize bounds the number of distinct source colors remembered per palette.
const cacheSize = 1 << 16

// Quantizer maps full-color images onto a fixed palette by nearest color,
// without dithering. The same image and palette always give the same indices.
type Quantizer struct {
	palette color.Palette
	cache   *lru.Cache[uint32, uint8]
}

func New(p color.Palette) *Quantizer {
	cache, err := lru.New[uint32, uint8](cacheSize)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}

	return &Quantizer{
		palette: p,
		cache:   cache,
	}
}

func (q *Quantizer) index(r, g, b uint8) uint8 {
	key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if i, ok := q.cache.Get(key); ok {
		return i
	}

	i := uint8(q.palette.Index(color.RGBA{R: r, G: g, B: b, A: 0xff}))
	q.cache.Add(key, i)

	return i
}

// Frame returns img as an indexed image over the quantizer's palette. The
// alpha channel of img is ignored.
func (q *Quantizer) Frame(img *image.RGBA) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), q.palette)

	for y := 0; y < b.Dy(); y++ {
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		di := out.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			out.Pix[di] = q.index(img.Pix[si], img.Pix[si+1], img.Pix[si+2])
			si += 4
			di++
		}
	}

	return out
}

// Sequence quantizes frames in order. onFrame, if set, is called after each
// frame with its index.
func (q *Quantizer) Sequence(ctx context.Context, frames []*image.RGBA, onFrame func(i int)) ([]*image.Paletted, error) {
	out := make([]*image.Paletted, len(frames))
	for i, f := range frames {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out[i] = q.Frame(f)
		if onFrame != nil {
			onFrame(i)
		}
	}

	return out, nil
}
