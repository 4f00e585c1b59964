package palette

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/seventv/GifBuilder/src/quantize"
)

var (
	ErrNoFrames   = fmt.Errorf("no frames to build a palette from")
	ErrBadOptions = fmt.Errorf("bad palette options")
)

type Options struct {
	Colors      int
	ThumbWidth  int
	ThumbHeight int
	Columns     int
}

func DefaultOptions() Options {
	return Options{
		Colors:      256,
		ThumbWidth:  160,
		ThumbHeight: 275,
		Columns:     6,
	}
}

func (o Options) validate() error {
	if o.Colors < 1 || o.Colors > 256 {
		return fmt.Errorf("%w: colors must be in 1..256, got %d", ErrBadOptions, o.Colors)
	}
	if o.ThumbWidth <= 0 || o.ThumbHeight <= 0 || o.Columns <= 0 {
		return fmt.Errorf("%w: thumbnail %dx%d, %d columns", ErrBadOptions, o.ThumbWidth, o.ThumbHeight, o.Columns)
	}
	return nil
}

// Palette is the color table every frame of every output is mapped onto.
type Palette struct {
	colors color.Palette
	img    *image.Paletted
}

func (p *Palette) Colors() color.Palette {
	return p.colors
}

// Image is the montage expressed in the palette.
func (p *Palette) Image() *image.Paletted {
	return p.img
}

// Grid returns the montage grid size for n thumbnails.
func Grid(n, columns int) (cols, rows int) {
	return columns, (n + columns - 1) / columns
}

// Montage tiles a bilinear thumbnail of every frame into a grid, left to
// right then top to bottom. Cells without a frame stay black.
func Montage(frames []*image.RGBA, opts Options) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cols, rows := Grid(len(frames), opts.Columns)
	out := image.NewRGBA(image.Rect(0, 0, opts.ThumbWidth*cols, opts.ThumbHeight*rows))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for i, f := range frames {
		x := (i % cols) * opts.ThumbWidth
		y := (i / cols) * opts.ThumbHeight
		cell := image.Rect(x, y, x+opts.ThumbWidth, y+opts.ThumbHeight)
		draw.BiLinear.Scale(out, cell, f, f.Bounds(), draw.Src, nil)
	}

	return out, nil
}

// Build derives one palette of at most opts.Colors colors from a montage of
// all frames.
func Build(frames []*image.RGBA, opts Options) (*Palette, error) {
	montage, err := Montage(frames, opts)
	if err != nil {
		return nil, err
	}

	tree := newOctree()
	tree.addImage(montage)
	colors := tree.palette(opts.Colors)

	return &Palette{
		colors: colors,
		img:    quantize.New(colors).Frame(montage),
	}, nil
}
