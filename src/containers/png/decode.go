package png

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	nPng "image/png"
)

// Decode decodes a PNG into an opaque RGBA image anchored at the origin.
// Any alpha channel is dropped rather than composited, so a transparent
// pixel keeps its stored color.
func Decode(data []byte) (*image.RGBA, error) {
	src, err := nPng.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return ToRGB(src), nil
}

// ToRGB copies src into a new opaque RGBA image.
func ToRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch s := src.(type) {
	case *image.NRGBA:
		// straight alpha: color channels are stored as-is
		for y := 0; y < b.Dy(); y++ {
			so := s.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				copy(dst.Pix[do:do+3], s.Pix[so:so+3])
				dst.Pix[do+3] = 0xff
				so += 4
				do += 4
			}
		}
		return dst
	case *image.NRGBA64:
		// big-endian 16-bit channels, keep the high byte
		for y := 0; y < b.Dy(); y++ {
			so := s.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[do] = s.Pix[so]
				dst.Pix[do+1] = s.Pix[so+2]
				dst.Pix[do+2] = s.Pix[so+4]
				dst.Pix[do+3] = 0xff
				so += 8
				do += 4
			}
		}
		return dst
	case *image.RGBA:
		if s.Opaque() {
			draw.Draw(dst, dst.Bounds(), s, b.Min, draw.Src)
			return dst
		}
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}

	return dst
}
