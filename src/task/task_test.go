package task

import (
	"context"
	"fmt"
	"image"
	"image/color"
	nGif "image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seventv/GifBuilder/src/containers"
	"github.com/seventv/GifBuilder/src/job"
	"github.com/seventv/GifBuilder/src/palette"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
)

var animations = []job.Animation{
	{Name: "add", FramesDir: "assets/frames/add", Output: "assets/add-task.gif", FrameDelay: 110, HoldDelay: 700},
	{Name: "delete", FramesDir: "assets/frames/delete", Output: "assets/delete-task.gif", FrameDelay: 100, HoldDelay: 800},
}

func writeFrames(t *testing.T, dir string, n int, c color.RGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))

	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 35, 60))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = c.R, c.G, c.B, c.A
		}

		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%03d.png", i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
}

func decode(t *testing.T, file string) *nGif.GIF {
	t.Helper()
	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	g, err := nGif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

type progress struct {
	max, added int
	descs      []string
	finished   bool
}

func (p *progress) Describe(d string) { p.descs = append(p.descs, d) }
func (p *progress) ChangeMax(n int)   { p.max = n }
func (p *progress) Add(n int) error   { p.added += n; return nil }
func (p *progress) Finish() error     { p.finished = true; return nil }

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFrames(t, filepath.Join(root, "assets", "frames", "add"), 3, red)
	writeFrames(t, filepath.Join(root, "assets", "frames", "delete"), 3, blue)

	var events []TaskEventType
	bar := &progress{}

	tk := New(root, animations, palette.DefaultOptions())
	tk.OnEvent = func(e TaskEvent) {
		assert.Equal(t, tk.ID().String(), e.TaskID)
		events = append(events, e.Type)
	}
	tk.Progress = bar

	files, err := tk.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, files, tk.Files())

	cases := []struct {
		file      job.File
		color     color.RGBA
		durations []int
	}{
		{files[0], red, []int{110, 110, 700}},
		{files[1], blue, []int{100, 100, 800}},
	}

	var shared color.Palette
	for _, c := range cases {
		assert.Equal(t, 3, c.file.Frames)
		assert.Equal(t, c.durations, c.file.Durations)
		assert.Equal(t, "image/gif", c.file.ContentType)
		assert.True(t, c.file.Animated)
		assert.Positive(t, c.file.Size)

		g := decode(t, c.file.Path)
		require.Len(t, g.Image, 3)
		assert.Equal(t, 0, g.LoopCount)

		for i, frame := range g.Image {
			assert.Equal(t, c.durations[i]/10, g.Delay[i])
			assert.Equal(t, byte(nGif.DisposalBackground), g.Disposal[i])
			assert.Equal(t, c.color, frame.Palette[frame.Pix[0]])
			assert.Equal(t, c.color, frame.At(34, 59))
		}

		global, ok := g.Config.ColorModel.(color.Palette)
		require.True(t, ok)
		if shared == nil {
			shared = global
		}
		assert.Equal(t, shared, global, "both outputs carry the same palette")
	}

	assert.Equal(t, filepath.Join(root, "assets", "add-task.gif"), files[0].Path)
	assert.Equal(t, filepath.Join(root, "assets", "delete-task.gif"), files[1].Path)

	assert.Equal(t, []TaskEventType{
		Started,
		StageOne, StageOneComplete,
		StageTwo, StageTwoComplete,
		StageThree,
		StageThree, StageThreeComplete,
		StageThree, StageThreeComplete,
		StageThreeComplete,
		Completed,
	}, events)

	assert.Equal(t, 6, bar.max)
	assert.Equal(t, 6, bar.added)
	assert.Equal(t, []string{"[GIF] add", "[GIF] delete"}, bar.descs)
	assert.True(t, bar.finished)
}

func TestRunCreatesOutputDir(t *testing.T) {
	root := t.TempDir()
	writeFrames(t, filepath.Join(root, "frames", "a"), 2, red)
	writeFrames(t, filepath.Join(root, "frames", "b"), 2, blue)

	anims := []job.Animation{
		{Name: "a", FramesDir: "frames/a", Output: "assets/a.gif", FrameDelay: 110, HoldDelay: 700},
		{Name: "b", FramesDir: "frames/b", Output: "assets/b.gif", FrameDelay: 100, HoldDelay: 800},
	}

	_, err := os.Stat(filepath.Join(root, "assets"))
	require.True(t, os.IsNotExist(err))

	_, err = New(root, anims, palette.DefaultOptions()).Run(context.Background())
	require.NoError(t, err)

	for _, f := range []string{"a.gif", "b.gif"} {
		_, err := os.Stat(filepath.Join(root, "assets", f))
		assert.NoError(t, err)
	}
}

func TestRunNotEnoughFrames(t *testing.T) {
	root := t.TempDir()
	writeFrames(t, filepath.Join(root, "assets", "frames", "add"), 3, red)
	writeFrames(t, filepath.Join(root, "assets", "frames", "delete"), 1, blue)

	var events []TaskEventType
	tk := New(root, animations, palette.DefaultOptions())
	tk.OnEvent = func(e TaskEvent) { events = append(events, e.Type) }

	_, err := tk.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, containers.ErrNotEnoughFrames)
	assert.Contains(t, err.Error(), filepath.Join(root, "assets", "frames", "delete"))

	assert.Equal(t, Failed, events[len(events)-1])
	assert.Nil(t, tk.Files())

	_, statErr := os.Stat(filepath.Join(root, "assets", "add-task.gif"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written when loading fails")
}

func TestRunNoAnimations(t *testing.T) {
	_, err := New(t.TempDir(), nil, palette.DefaultOptions()).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoAnimations)
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	writeFrames(t, filepath.Join(root, "assets", "frames", "add"), 2, red)
	writeFrames(t, filepath.Join(root, "assets", "frames", "delete"), 2, blue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(root, animations, palette.DefaultOptions()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRelativeToWorkingDir(t *testing.T) {
	root := t.TempDir()
	writeFrames(t, filepath.Join(root, "assets", "frames", "add"), 2, red)
	writeFrames(t, filepath.Join(root, "assets", "frames", "delete"), 2, blue)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	files, err := New("", animations, palette.DefaultOptions()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, filepath.IsAbs(files[0].Path))

	_, err = os.Stat(filepath.Join(root, "assets", "add-task.gif"))
	assert.NoError(t, err)
}
