package photo

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// Accepted describes a photo that passed all shape checks.
type Accepted struct {
	Width  int
	Height int
	Ratio  float64
	Image  image.Image
	Bytes  []byte
}

// Validate decodes the candidate image and applies the shape rules. It
// returns a *RejectionError when the photo is declined; any other error
// means the bytes could not be decoded at all.
func Validate(data []byte, rules Rules) (*Accepted, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, reject(RejectUndecodable, "rasmni o'qib bo'lmadi, boshqa rasm yuboring")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width < rules.MinWidth || height < rules.MinHeight {
		return nil, reject(RejectTooSmall,
			"rasm sifati past: minimal o'lcham %dx%d, hozirgi %dx%d",
			rules.MinWidth, rules.MinHeight, width, height)
	}
	if width > rules.MaxWidth || height > rules.MaxHeight {
		return nil, reject(RejectTooLarge,
			"rasm juda katta: maksimal o'lcham %dx%d, hozirgi %dx%d",
			rules.MaxWidth, rules.MaxHeight, width, height)
	}
	if height <= width {
		return nil, reject(RejectNotPortrait,
			"rasm tik (portret) formatda bo'lishi kerak, hozirgi %dx%d", width, height)
	}

	ratio := float64(width) / float64(height)
	if ratio < rules.MinRatio || ratio > rules.MaxRatio {
		return nil, reject(RejectBadRatio,
			"rasm nisbati mos emas: %.2f, kerakli oraliq %.2f-%.2f",
			ratio, rules.MinRatio, rules.MaxRatio)
	}

	return &Accepted{
		Width:  width,
		Height: height,
		Ratio:  ratio,
		Image:  img,
		Bytes:  data,
	}, nil
}

// CheckFingerprint compares the candidate fingerprint against a previously
// accepted one. An empty previous fingerprint always passes.
func CheckFingerprint(prev, curr string, rules Rules) error {
	if prev == "" {
		return nil
	}
	dist := HammingDistance(prev, curr)
	if dist > rules.HashDistance {
		return reject(RejectMismatch,
			"rasm avvalgi yuborilgan rasmga mos kelmadi (farq %d bit)", dist)
	}
	return nil
}
