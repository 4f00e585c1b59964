package job

import (
	"time"

	"github.com/seventv/GifBuilder/src/configure"
)

// Animation is one frames directory turned into one GIF.
type Animation struct {
	Name      string `json:"name"`
	FramesDir string `json:"frames_dir"`
	Output    string `json:"output"`
	// FrameDelay is the display time of every frame but the last, in ms.
	FrameDelay int `json:"frame_delay"`
	// HoldDelay is the display time of the last frame, in ms.
	HoldDelay int `json:"hold_delay"`
}

// Durations returns n frame durations in milliseconds: frame for every entry
// except the last, which holds for hold.
func (a Animation) Durations(n int) []int {
	return Durations(n, a.FrameDelay, a.HoldDelay)
}

func Durations(n, frame, hold int) []int {
	if n <= 0 {
		return []int{}
	}

	out := make([]int, n)
	for i := range out {
		out[i] = frame
	}
	out[n-1] = hold

	return out
}

// FromConfig converts the configured animations, in order.
func FromConfig(cfg []configure.Animation) []Animation {
	out := make([]Animation, len(cfg))
	for i, a := range cfg {
		out[i] = Animation{
			Name:       a.Name,
			FramesDir:  a.FramesDir,
			Output:     a.Output,
			FrameDelay: a.FrameDelayMs,
			HoldDelay:  a.HoldDelayMs,
		}
	}
	return out
}

// File describes one written output.
type File struct {
	Name        string        `json:"name"`
	Path        string        `json:"path"`
	Size        int           `json:"size"`
	ContentType string        `json:"content_type"`
	Animated    bool          `json:"animated"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Frames      int           `json:"frames"`
	Durations   []int         `json:"durations"`
	TimeTaken   time.Duration `json:"time_taken"`
}
