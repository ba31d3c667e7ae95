package util

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const sniffLen = 512

// SniffMIME reads the head of r and returns the detected MIME type together
// with a reader that replays the consumed bytes.
func SniffMIME(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]

	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "image/")
}

func IsImageExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".png", ".apng", ".jpg", ".jpeg", ".jpe", ".jfif", ".pjpeg", ".pjp", ".gif", ".webp", ".bmp", ".dib", ".tiff", ".tif", ".svg", ".avif", ".heic", ".heif":
		return true
	default:
		return false
	}
}

// DecodeImageConfig checks that data decodes as a raster image and returns its
// format and dimensions.
func DecodeImageConfig(data []byte) (string, image.Config, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", image.Config{}, fmt.Errorf("decode image header: %w", err)
	}
	return format, cfg, nil
}
