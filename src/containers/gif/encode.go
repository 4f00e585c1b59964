package gif

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	nGif "image/gif"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

var (
	ErrNoFrames         = fmt.Errorf("no frames to encode")
	ErrDurationMismatch = fmt.Errorf("durations length must match frame count")
	ErrPaletteMismatch  = fmt.Errorf("frames do not share one palette")
)

// Encode writes frames as one infinitely looping GIF at out. durations are in
// milliseconds, one per frame. Every frame is disposed to background before
// the next is drawn and all frames use the first frame's palette as the
// global color table.
func Encode(frames []*image.Paletted, out string, durations []int) error {
	if len(frames) != len(durations) {
		return fmt.Errorf("%w: %d frames, %d durations", ErrDurationMismatch, len(frames), len(durations))
	}
	if len(frames) == 0 {
		return ErrNoFrames
	}

	g, err := build(frames, durations)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(out), fmt.Sprintf(".%s.%s.part", filepath.Base(out), uuid.NewString()))
	if err := write(tmp, g); err != nil {
		return multierror.Append(err, removeIfExists(tmp)).ErrorOrNil()
	}

	if err := os.Rename(tmp, out); err != nil {
		return multierror.Append(fmt.Errorf("rename failed: %w", err), removeIfExists(tmp)).ErrorOrNil()
	}

	return nil
}

func build(frames []*image.Paletted, durations []int) (*nGif.GIF, error) {
	pal := frames[0].Palette
	bounds := frames[0].Bounds()

	g := &nGif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: 0,
		Config: image.Config{
			ColorModel: pal,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
	}

	for i, f := range frames {
		if !samePalette(pal, f.Palette) {
			return nil, fmt.Errorf("%w: frame %d", ErrPaletteMismatch, i)
		}

		b := f.Bounds()
		if b.Dx() > g.Config.Width {
			g.Config.Width = b.Dx()
		}
		if b.Dy() > g.Config.Height {
			g.Config.Height = b.Dy()
		}

		g.Image[i] = f
		g.Delay[i] = ToCentiseconds(durations[i])
		g.Disposal[i] = nGif.DisposalBackground
	}

	return g, nil
}

func write(file string, g *nGif.GIF) error {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := nGif.EncodeAll(w, g); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func removeIfExists(file string) error {
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func samePalette(a, b color.Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		r1, g1, b1, a1 := a[i].RGBA()
		r2, g2, b2, a2 := b[i].RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
			return false
		}
	}
	return true
}

// ToCentiseconds converts milliseconds to the GIF delay unit, truncating any
// remainder below a hundredth of a second.
func ToCentiseconds(ms int) int {
	return ms / 10
}
