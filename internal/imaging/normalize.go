// Package imaging turns uploaded product photos into bounded, re-encoded JPEGs
// small enough to embed in a catalog record.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadBytes is the exclusive ceiling on raw upload size.
	MaxUploadBytes = 5 * 1024 * 1024
	// MaxPixels bounds the decoded source area. Compressed size says little
	// about how much memory a decode takes.
	MaxPixels = 50_000_000
	// MaxDimension bounds the longer side of the output.
	MaxDimension = 800
	// Quality is the JPEG quality factor on a 0.0-1.0 scale.
	Quality = 0.8

	dataURIPrefix = "data:image/jpeg;base64,"
)

var (
	ErrSizeLimitExceeded = errors.New("image exceeds upload size limit")
	ErrDecode            = errors.New("image could not be decoded")
)

// Result is a normalized image.
type Result struct {
	DataURI      string
	JPEG         []byte
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	Quality      float64
}

type Normalizer struct {
	MaxBytes  int64
	MaxPixels int
	MaxSize   int
	Quality   float64
}

func New() *Normalizer {
	return &Normalizer{MaxBytes: MaxUploadBytes, MaxPixels: MaxPixels, MaxSize: MaxDimension, Quality: Quality}
}

// CheckSize reports ErrSizeLimitExceeded for payloads at or above the ceiling.
func (n *Normalizer) CheckSize(size int64) error {
	if size >= n.MaxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrSizeLimitExceeded, size, n.MaxBytes)
	}
	return nil
}

// Normalize decodes raw, shrinks it so neither side exceeds MaxSize and
// re-encodes it as JPEG. One attempt; any failure is final.
func (n *Normalizer) Normalize(raw []byte) (Result, error) {
	if err := n.CheckSize(int64(len(raw))); err != nil {
		return Result{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if n.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(n.MaxPixels) {
		return Result{}, fmt.Errorf("%w: %dx%d pixels (limit %d)", ErrSizeLimitExceeded, cfg.Width, cfg.Height, n.MaxPixels)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := src.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), n.MaxSize)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(n.Quality)}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	out := buf.Bytes()
	return Result{
		DataURI:      dataURIPrefix + base64.StdEncoding.EncodeToString(out),
		JPEG:         out,
		Width:        w,
		Height:       h,
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		Quality:      n.Quality,
	}, nil
}

// TargetSize returns the output dimensions for a w x h source. Landscape
// images wider than maxSize are pinned to maxSize wide; otherwise images
// taller than maxSize are pinned to maxSize high. Smaller images keep their
// size.
func TargetSize(w, h, maxSize int) (int, int) {
	switch {
	case w > h && w > maxSize:
		return maxSize, atLeastOne(math.Round(float64(h) * float64(maxSize) / float64(w)))
	case h > maxSize:
		return atLeastOne(math.Round(float64(w) * float64(maxSize) / float64(h))), maxSize
	default:
		return w, h
	}
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// IsDataURI reports whether s is an embedded JPEG produced by Normalize.
func IsDataURI(s string) bool {
	return len(s) > len(dataURIPrefix) && s[:len(dataURIPrefix)] == dataURIPrefix
}
