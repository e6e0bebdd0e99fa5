// Package termimage draws small raster images, such as QR codes, with Unicode half blocks.
package termimage

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	// ErrUnsupportedImage is returned when the image format is not recognized.
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrInvalidWidth is returned for a non-positive output width.
	ErrInvalidWidth = errors.New("invalid width")
)

//nolint:gochecknoglobals
var (
	imageHeaders = []struct {
		magic  string
		decode func(io.Reader) (image.Image, error)
	}{
		{"\x89PNG\r\n\x1a\n", png.Decode},
		{"\xFF\xD8", jpeg.Decode},
		{"GIF8", gif.Decode},
		{"RIFF", webp.Decode},
	}

	// blocks is indexed by top<<1 | bottom, where 1 means a dark pixel.
	blocks = [4]string{" ", "▄", "▀", "█"}
)

// DecodeBase64 decodes a base64 image, with or without a data URL prefix.
func DecodeBase64(encoded string) (image.Image, error) {
	if _, data, ok := strings.Cut(encoded, ","); ok && strings.HasPrefix(encoded, "data:") {
		encoded = data
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	return Decode(raw)
}

// Decode decodes a PNG, JPEG, GIF or WebP image by sniffing its header.
func Decode(data []byte) (image.Image, error) {
	for _, header := range imageHeaders {
		if bytes.HasPrefix(data, []byte(header.magic)) {
			img, err := header.decode(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("decode image: %w", err)
			}

			return img, nil
		}
	}

	return nil, ErrUnsupportedImage
}

// Render writes img scaled to width columns. Each character covers two pixel rows.
// With invert set, light pixels are drawn, which suits dark terminals.
func Render(w io.Writer, img image.Image, width int, invert bool) error {
	if width <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return nil
	}

	height := (src.Dy()*width + src.Dx()/2) / src.Dx()
	if height == 0 {
		height = 1
	}

	// Pad to an even number of rows with background.
	bitmap := image.NewGray(image.Rect(0, 0, width, height+height%2))
	draw.Draw(bitmap, bitmap.Bounds(), image.White, image.Point{}, draw.Src)
	draw.NearestNeighbor.Scale(bitmap, image.Rect(0, 0, width, height), img, src, draw.Over, nil)

	out := bufio.NewWriter(w)

	for y := 0; y < bitmap.Bounds().Dy(); y += 2 {
		for x := range width {
			top := isDark(bitmap.GrayAt(x, y), invert)
			bottom := isDark(bitmap.GrayAt(x, y+1), invert)

			if _, err := out.WriteString(blocks[top<<1|bottom]); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}

		if err := out.WriteByte('\n'); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}

func isDark(c color.Gray, invert bool) int {
	if (c.Y < 128) != invert {
		return 1
	}

	return 0
}
