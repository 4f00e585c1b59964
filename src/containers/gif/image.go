package gif

import "bytes"

// Test reports whether data looks like a GIF87a/GIF89a stream ending in a trailer.
func Test(data []byte) bool {
	if len(data) < 8 {
		return false
	}

	return (bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))) &&
		bytes.HasSuffix(data, []byte{0x00, ';'})
}
