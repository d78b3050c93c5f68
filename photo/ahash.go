package photo

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// hashSize is the side of the downsampled grid; the fingerprint carries
// hashSize*hashSize bits.
const hashSize = 16

// Fingerprint computes a coarse average-hash of the image: the image is
// box-downsampled to a 16x16 grayscale grid, each cell is thresholded
// against the grid average, and the resulting 256 bits are hex-packed.
// It is a duplicate-detection heuristic, not a cryptographic hash.
func Fingerprint(img image.Image) string {
	gray := downsampleGray(img, hashSize)

	var sum uint64
	for _, p := range gray {
		sum += uint64(p)
	}
	avg := uint8(sum / uint64(len(gray)))

	var hex strings.Builder
	hex.Grow(len(gray) / 4)
	nibble := 0
	for i, p := range gray {
		nibble <<= 1
		if p >= avg {
			nibble |= 1
		}
		if i%4 == 3 {
			fmt.Fprintf(&hex, "%x", nibble)
			nibble = 0
		}
	}
	return hex.String()
}

// downsampleGray averages the source pixels falling into each cell of a
// size x size grid and returns the grayscale cells row-major.
func downsampleGray(img image.Image, size int) []uint8 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]uint8, size*size)

	for cy := 0; cy < size; cy++ {
		y0 := bounds.Min.Y + cy*h/size
		y1 := bounds.Min.Y + (cy+1)*h/size
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for cx := 0; cx < size; cx++ {
			x0 := bounds.Min.X + cx*w/size
			x1 := bounds.Min.X + (cx+1)*w/size
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var sum, n uint64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
					sum += uint64(g.Y)
					n++
				}
			}
			out[cy*size+cx] = uint8(sum / n)
		}
	}
	return out
}

// HammingDistance counts differing bits between two hex-packed
// fingerprints. Mismatched lengths compare as maximally distant.
func HammingDistance(a, b string) int {
	if len(a) != len(b) {
		return hashSize*hashSize + 1
	}
	dist := 0
	for i := 0; i < len(a); i++ {
		x := hexVal(a[i]) ^ hexVal(b[i])
		for x != 0 {
			dist += int(x & 1)
			x >>= 1
		}
	}
	return dist
}

func hexVal(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
