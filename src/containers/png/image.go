package png

import "bytes"

var (
	// https://www.garykessler.net/library/file_sigs.html
	magic   = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	trailer = []byte{'I', 'E', 'N', 'D', 0xAE, 'B', 0x60, 0x82}
)

// Test reports whether data is a complete PNG stream, header through IEND.
func Test(data []byte) bool {
	if len(data) < len(magic)+len(trailer) {
		return false
	}

	return bytes.HasPrefix(data, magic) && bytes.HasSuffix(data, trailer)
}
