package gif

import (
	"fmt"
	"image/color"
	nGif "image/gif"
	"os"
)

// Info is what a written GIF looks like to a decoder.
type Info struct {
	Frames    int
	Width     int
	Height    int
	LoopCount int
	// Durations are per-frame delays in milliseconds.
	Durations []int
	Disposal  []byte
	// Palette is the global color table, nil if the file has none.
	Palette color.Palette
}

func Inspect(file string) (Info, error) {
	f, err := os.Open(file)
	if err != nil {
		return Info{}, fmt.Errorf("open file failed: %w", err)
	}
	defer f.Close()

	g, err := nGif.DecodeAll(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", file, err)
	}

	info := Info{
		Frames:    len(g.Image),
		Width:     g.Config.Width,
		Height:    g.Config.Height,
		LoopCount: g.LoopCount,
		Durations: make([]int, len(g.Delay)),
		Disposal:  g.Disposal,
	}
	for i, d := range g.Delay {
		info.Durations[i] = d * 10
	}
	if p, ok := g.Config.ColorModel.(color.Palette); ok {
		info.Palette = p
	}

	return info, nil
}
