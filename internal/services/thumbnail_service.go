package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	// DefaultThumbMaxWidth bounds thumbnails derived on the create path.
	DefaultThumbMaxWidth  = 256
	DefaultThumbMaxHeight = 256
	DefaultThumbQuality   = 60
)

// ThumbnailService derives a reduced-size, lossily re-encoded copy of a full
// image payload for list rendering. Input and output are data URLs.
type ThumbnailService interface {
	Derive(dataURL string, maxWidth, maxHeight, quality int) (string, error)
}

type thumbnailService struct{}

func NewThumbnailService() ThumbnailService {
	return &thumbnailService{}
}

func (s *thumbnailService) Derive(dataURL string, maxWidth, maxHeight, quality int) (string, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return "", fmt.Errorf("thumbnail bounds must be positive")
	}
	contentType, data, err := parseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	img, err := decodeImage(contentType, data)
	if err != nil {
		return "", fmt.Errorf("decode source image: %w", err)
	}

	width, height := fitWithin(img.Bounds().Dx(), img.Bounds().Dy(), maxWidth, maxHeight)
	scaled := resizeNearest(img, width, height)

	encoded, outType, err := encodeImage(scaled, contentType, quality)
	if err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return fmt.Sprintf("data:%s;base64,%s", outType, base64.StdEncoding.EncodeToString(encoded)), nil
}

func parseDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	contentType, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, ";base64") {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty image payload")
	}
	return contentType, data, nil
}

func decodeImage(contentType string, data []byte) (image.Image, error) {
	if contentType == "image/webp" || isWEBP(data) {
		return webp.Decode(bytes.NewReader(data), &decoder.Options{})
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// encodeImage re-encodes in the source content type at the given lossy
// quality. PNG stays lossless; anything without a matching encoder falls back
// to jpeg.
func encodeImage(img image.Image, contentType string, quality int) ([]byte, string, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultThumbQuality
	}
	var out bytes.Buffer
	switch contentType {
	case "image/png":
		if err := png.Encode(&out, img); err != nil {
			return nil, "", err
		}
		return out.Bytes(), "image/png", nil
	case "image/webp":
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return nil, "", err
		}
		if err := webp.Encode(&out, img, opts); err != nil {
			return nil, "", err
		}
		return out.Bytes(), "image/webp", nil
	default:
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		return out.Bytes(), "image/jpeg", nil
	}
}

// fitWithin scales source dimensions down to the bounds, preserving aspect
// ratio. Images already inside the bounds keep their size: never upscale.
func fitWithin(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 1
	}
	if srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}
	scaleW := float64(maxW) / float64(srcW)
	scaleH := float64(maxH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func isWEBP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

func resizeNearest(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := src.Bounds()
	srcW := b.Dx()
	srcH := b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return dst
	}

	for y := 0; y < height; y++ {
		srcY := b.Min.Y + (y*srcH)/height
		for x := 0; x < width; x++ {
			srcX := b.Min.X + (x*srcW)/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
