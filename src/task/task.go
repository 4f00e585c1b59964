package task

import (
	"context"
	"fmt"
	nImage "image"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/seventv/GifBuilder/src/containers"
	"github.com/seventv/GifBuilder/src/containers/gif"
	"github.com/seventv/GifBuilder/src/image"
	"github.com/seventv/GifBuilder/src/job"
	"github.com/seventv/GifBuilder/src/palette"
	"github.com/seventv/GifBuilder/src/quantize"
)

var (
	ErrNoAnimations = fmt.Errorf("no animations to build")
	ErrRoundTrip    = fmt.Errorf("written gif does not match its input")
)

// Progress is advanced once per quantized frame.
type Progress interface {
	Describe(description string)
	ChangeMax(n int)
	Add(n int) error
	Finish() error
}

type Task struct {
	id uuid.UUID

	root       string
	animations []job.Animation
	palette    palette.Options

	// OnEvent, if set, receives every lifecycle event synchronously.
	OnEvent  func(TaskEvent)
	Progress Progress

	files []job.File
}

// New builds a task over animations whose relative paths resolve against
// root. An empty root is the working directory.
func New(root string, animations []job.Animation, opts palette.Options) *Task {
	id, _ := uuid.NewRandom()
	return &Task{
		id:         id,
		root:       root,
		animations: animations,
		palette:    opts,
	}
}

func (t *Task) ID() uuid.UUID {
	return t.id
}

func (t *Task) Files() []job.File {
	return t.files
}

func (t *Task) emit(typ TaskEventType, animation string) {
	if t.OnEvent == nil {
		return
	}
	t.OnEvent(TaskEvent{
		TaskID:    t.id.String(),
		Type:      typ,
		Animation: animation,
		Timestamp: time.Now(),
	})
}

func (t *Task) path(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}

	root := t.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}

	return filepath.Join(root, p), nil
}

// Run loads every animation's frames, derives one palette from all of them,
// and writes each animation as a GIF over that palette.
func (t *Task) Run(ctx context.Context) ([]job.File, error) {
	t.emit(Started, "")

	files, err := t.run(ctx)
	if err != nil {
		t.emit(Failed, "")
		return nil, err
	}

	t.files = files
	t.emit(Completed, "")

	return files, nil
}

func (t *Task) run(ctx context.Context) ([]job.File, error) {
	if len(t.animations) == 0 {
		return nil, ErrNoAnimations
	}

	start := time.Now()

	// load
	t.emit(StageOne, "")

	sequences := make([]image.Sequence, len(t.animations))
	total := 0
	for i, a := range t.animations {
		dir, err := t.path(a.FramesDir)
		if err != nil {
			return nil, err
		}

		if sequences[i], err = containers.LoadFrames(dir); err != nil {
			return nil, fmt.Errorf("%s: %w", a.Name, err)
		}
		total += len(sequences[i])

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	t.emit(StageOneComplete, "")

	// palette
	t.emit(StageTwo, "")

	all := make([]*nImage.RGBA, 0, total)
	for _, seq := range sequences {
		all = append(all, seq.Images()...)
	}

	pal, err := palette.Build(all, t.palette)
	if err != nil {
		return nil, err
	}

	t.emit(StageTwoComplete, "")

	// quantize + encode
	t.emit(StageThree, "")

	if t.Progress != nil {
		t.Progress.ChangeMax(total)
		defer func() { _ = t.Progress.Finish() }()
	}

	q := quantize.New(pal.Colors())
	files := make([]job.File, 0, len(t.animations))
	for i, a := range t.animations {
		f, err := t.encode(ctx, q, a, sequences[i], start)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Name, err)
		}
		files = append(files, f)
	}

	t.emit(StageThreeComplete, "")

	return files, nil
}

func (t *Task) encode(ctx context.Context, q *quantize.Quantizer, a job.Animation, seq image.Sequence, start time.Time) (job.File, error) {
	t.emit(StageThree, a.Name)

	var onFrame func(int)
	if t.Progress != nil {
		t.Progress.Describe(fmt.Sprintf("[GIF] %s", a.Name))
		onFrame = func(int) { _ = t.Progress.Add(1) }
	}

	frames, err := q.Sequence(ctx, seq.Images(), onFrame)
	if err != nil {
		return job.File{}, err
	}

	out, err := t.path(a.Output)
	if err != nil {
		return job.File{}, err
	}

	durations := a.Durations(len(frames))
	if err := gif.Encode(frames, out, durations); err != nil {
		return job.File{}, err
	}

	info, err := gif.Inspect(out)
	if err != nil {
		return job.File{}, err
	}
	if err := verify(info, durations); err != nil {
		return job.File{}, fmt.Errorf("%s: %w", out, err)
	}

	stat, err := os.Stat(out)
	if err != nil {
		return job.File{}, err
	}

	t.emit(StageThreeComplete, a.Name)

	return job.File{
		Name:        a.Name,
		Path:        out,
		Size:        int(stat.Size()),
		ContentType: "image/gif",
		Animated:    info.Frames > 1,
		Width:       info.Width,
		Height:      info.Height,
		Frames:      info.Frames,
		Durations:   info.Durations,
		TimeTaken:   time.Since(start),
	}, nil
}

// verify checks a decoded GIF against the durations it was written with.
func verify(info gif.Info, durations []int) error {
	if info.Frames != len(durations) {
		return fmt.Errorf("%w: %d frames, expected %d", ErrRoundTrip, info.Frames, len(durations))
	}
	for i, d := range durations {
		if want := gif.ToCentiseconds(d) * 10; info.Durations[i] != want {
			return fmt.Errorf("%w: frame %d lasts %dms, expected %dms", ErrRoundTrip, i, info.Durations[i], want)
		}
	}
	return nil
}
