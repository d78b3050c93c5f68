package photo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// encodePNG renders a horizontal gradient so fingerprints carry signal.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / w)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAccepts(t *testing.T) {
	acc, err := Validate(encodePNG(t, 700, 1000), DefaultRules())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if acc.Width != 700 || acc.Height != 1000 {
		t.Errorf("dimensions = %dx%d, want 700x1000", acc.Width, acc.Height)
	}
	if acc.Ratio < 0.69 || acc.Ratio > 0.71 {
		t.Errorf("ratio = %.3f, want ~0.70", acc.Ratio)
	}
	if acc.Image == nil {
		t.Error("decoded image missing")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		reason RejectReason
	}{
		{"too small", encodePNG(t, 500, 900), RejectTooSmall},
		{"too large", encodePNG(t, 4200, 5600), RejectTooLarge},
		{"landscape", encodePNG(t, 1000, 800), RejectNotPortrait},
		{"square-ish", encodePNG(t, 750, 800), RejectBadRatio},
		{"too narrow", encodePNG(t, 600, 1200), RejectBadRatio},
		{"garbage bytes", []byte("not an image"), RejectUndecodable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.data, DefaultRules())
			var rej *RejectionError
			if !errors.As(err, &rej) {
				t.Fatalf("expected RejectionError, got %v", err)
			}
			if rej.Reason != tt.reason {
				t.Errorf("reason = %s, want %s", rej.Reason, tt.reason)
			}
			if rej.Message == "" {
				t.Error("rejection message is empty")
			}
		})
	}
}

func TestCheckFingerprint(t *testing.T) {
	rules := DefaultRules()

	if err := CheckFingerprint("", "abc", rules); err != nil {
		t.Errorf("empty previous fingerprint should pass, got %v", err)
	}

	curr := Fingerprint(mustDecode(t, encodePNG(t, 700, 1000)))
	if err := CheckFingerprint(curr, curr, rules); err != nil {
		t.Errorf("identical fingerprints should pass, got %v", err)
	}

	inverted := invertHex(curr)
	err := CheckFingerprint(curr, inverted, rules)
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError for inverted fingerprint, got %v", err)
	}
	if rej.Reason != RejectMismatch {
		t.Errorf("reason = %s, want %s", rej.Reason, RejectMismatch)
	}
}

func mustDecode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func invertHex(s string) string {
	out := make([]byte, len(s))
	const digits = "0123456789abcdef"
	for i := 0; i < len(s); i++ {
		out[i] = digits[0xf^hexVal(s[i])]
	}
	return string(out)
}
