/*
Package images derives thumbnails and low-quality copies of comic images.

Sizes are written either as an absolute width and height or as a percentage
of the source image:

	100, 36
	50%
*/
package images

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	thumbnailQuality  = 85
	lowQualityQuality = 60
)

// Size is either an absolute size or a scale factor.
type Size struct {
	W, H  int
	Scale float64
}

// String returns the size in the form accepted by ParseSize.
func (s Size) String() string {
	if s.Scale != 0 {
		return strconv.FormatFloat(s.Scale*100, 'f', -1, 64) + "%"
	}
	return fmt.Sprintf("%d, %d", s.W, s.H)
}

// Dimensions returns the target width and height for a source of w by h.
// The result is never smaller than one pixel in either direction.
func (s Size) Dimensions(w, h int) (int, int) {
	if s.Scale != 0 {
		w = int(float64(w) * s.Scale)
		h = int(float64(h) * s.Scale)
	} else {
		w, h = s.W, s.H
	}
	return max(w, 1), max(h, 1)
}

// ParseSize parses "W, H" or "N%".
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, ","):
		ws, hs, _ := strings.Cut(s, ",")
		w, err := strconv.Atoi(strings.TrimSpace(ws))
		if err != nil {
			return Size{}, fmt.Errorf("ParseSize: width of %q: %w", s, err)
		}
		h, err := strconv.Atoi(strings.TrimSpace(hs))
		if err != nil {
			return Size{}, fmt.Errorf("ParseSize: height of %q: %w", s, err)
		}
		if w <= 0 || h <= 0 {
			return Size{}, fmt.Errorf("ParseSize: %q is not a positive size", s)
		}
		return Size{W: w, H: h}, nil
	case strings.HasSuffix(s, "%"):
		p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return Size{}, fmt.Errorf("ParseSize: %q: %w", s, err)
		}
		if p <= 0 {
			return Size{}, fmt.Errorf("ParseSize: %q is not a positive percentage", s)
		}
		return Size{Scale: p / 100}, nil
	}
	return Size{}, fmt.Errorf("ParseSize: unknown resize value %q", s)
}

// ErrUnsupportedType is returned when an image cannot be encoded as the
// requested file type.
var ErrUnsupportedType = errors.New("unsupported image type")

// Resize scales img to size.
func Resize(img image.Image, size Size) image.Image {
	b := img.Bounds()
	w, h := size.Dimensions(b.Dx(), b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Thumbnail writes a resized JPEG copy of src to dst.
func Thumbnail(src, dst string, size Size) error {
	img, err := decode(src)
	if err != nil {
		return err
	}
	return write(dst, func(w io.Writer) error {
		return jpeg.Encode(w, Resize(img, size), &jpeg.Options{Quality: thumbnailQuality})
	})
}

// Convert re-encodes src as dst, choosing the encoder from the extension
// of dst. JPEG output uses a reduced quality.
func Convert(src, dst string) error {
	enc, err := encoder(filepath.Ext(dst))
	if err != nil {
		return fmt.Errorf("Convert: %s: %w", dst, err)
	}
	img, err := decode(src)
	if err != nil {
		return err
	}
	return write(dst, func(w io.Writer) error {
		return enc(w, img)
	})
}

// ValidType reports whether fileType, such as "png", can be written by Convert.
func ValidType(fileType string) bool {
	_, err := encoder("." + fileType)
	return err == nil
}

func encoder(ext string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: lowQualityQuality})
		}, nil
	case ".png":
		return png.Encode, nil
	case ".gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	}
	return nil, ErrUnsupportedType
}

func decode(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

func write(name string, encode func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	err = encode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}
