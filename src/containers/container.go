package containers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/seventv/GifBuilder/src/containers/gif"
	"github.com/seventv/GifBuilder/src/containers/png"
	"github.com/seventv/GifBuilder/src/image"
)

// MinFrames is the smallest sequence worth turning into an animation.
const MinFrames = 2

var (
	ErrUnknownFormat   = fmt.Errorf("unknown image format")
	ErrNotEnoughFrames = fmt.Errorf("not enough PNG frames")
)

func ToType(data []byte) (image.ImageType, error) {
	if gif.Test(data) {
		return image.GIF, nil
	} else if png.Test(data) {
		return image.PNG, nil
	}

	return "", ErrUnknownFormat
}

// ListFrames returns the *.png files in dir in lexicographic order.
// A missing directory yields no files.
func ListFrames(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	return files, nil
}

// LoadFrames decodes every PNG in dir, in filename order.
func LoadFrames(dir string) (image.Sequence, error) {
	files, err := ListFrames(dir)
	if err != nil {
		return nil, err
	}

	if len(files) < MinFrames {
		return nil, fmt.Errorf("%w in: %s", ErrNotEnoughFrames, dir)
	}

	seq := make(image.Sequence, len(files))
	for i, file := range files {
		if seq[i], err = LoadFrame(file); err != nil {
			return nil, err
		}
	}

	return seq, nil
}

func LoadFrame(file string) (image.Frame, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return image.Frame{}, fmt.Errorf("read file failed: %w", err)
	}

	imgType, err := ToType(data)
	if err != nil {
		return image.Frame{}, fmt.Errorf("%s: %w", file, err)
	}
	if imgType != image.PNG {
		return image.Frame{}, fmt.Errorf("%s: %w: expected png, got %s", file, ErrUnknownFormat, imgType)
	}

	img, err := png.Decode(data)
	if err != nil {
		return image.Frame{}, fmt.Errorf("%s: %w", file, err)
	}

	return image.Frame{
		Path: file,
		Img:  img,
	}, nil
}
