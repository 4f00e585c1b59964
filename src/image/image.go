package image

import (
	nImage "image"
)

// Frame is one decoded source frame. Img is always fully opaque.
type Frame struct {
	Path string
	Img  *nImage.RGBA
}

// Sequence is the ordered frames of one animation.
type Sequence []Frame

func (s Sequence) Images() []*nImage.RGBA {
	out := make([]*nImage.RGBA, len(s))
	for i, f := range s {
		out[i] = f.Img
	}
	return out
}

type ImageType string

const (
	GIF ImageType = "gif"
	PNG ImageType = "png"
)
