package photo

import (
	"image"
	"image/color"
	"testing"
)

func gradientImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / w)})
		}
	}
	return img
}

func TestFingerprintShape(t *testing.T) {
	fp := Fingerprint(gradientImage(700, 1000))
	if len(fp) != hashSize*hashSize/4 {
		t.Fatalf("fingerprint length = %d, want %d", len(fp), hashSize*hashSize/4)
	}
	for i := 0; i < len(fp); i++ {
		if hexVal(fp[i]) == 0 && fp[i] != '0' {
			t.Fatalf("non-hex byte %q at %d", fp[i], i)
		}
	}
}

func TestFingerprintStableAcrossScale(t *testing.T) {
	a := Fingerprint(gradientImage(700, 1000))
	b := Fingerprint(gradientImage(1400, 2000))
	if d := HammingDistance(a, b); d > 10 {
		t.Errorf("scaled copies differ by %d bits, want <= 10", d)
	}
}

func TestFingerprintDistinguishes(t *testing.T) {
	grad := Fingerprint(gradientImage(700, 1000))

	split := image.NewGray(image.Rect(0, 0, 700, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 700; x++ {
			v := uint8(0)
			if y >= 500 {
				v = 255
			}
			split.SetGray(x, y, color.Gray{Y: v})
		}
	}
	if d := HammingDistance(grad, Fingerprint(split)); d <= 10 {
		t.Errorf("unrelated images differ by only %d bits", d)
	}
}

func TestHammingDistance(t *testing.T) {
	if d := HammingDistance("abcd", "abcd"); d != 0 {
		t.Errorf("identical distance = %d, want 0", d)
	}
	if d := HammingDistance("0", "f"); d != 4 {
		t.Errorf("0 vs f distance = %d, want 4", d)
	}
	if d := HammingDistance("ab", "abc"); d <= hashSize*hashSize {
		t.Errorf("length mismatch distance = %d, want > %d", d, hashSize*hashSize)
	}
}
