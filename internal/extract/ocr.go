package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
)

// ErrUnrecognizableImage reports an image the OCR engine could not
// read any text from, typically a low-resolution or blurry scan.
var ErrUnrecognizableImage = errors.New("OCR could not extract text from the image; this may be due to low resolution or blurriness, try a clearer scan or paste the report text directly")

// OCR extracts text from scanned report images by shelling out to the
// tesseract binary.
type OCR struct {
	language string
	log      *slog.Logger
}

// NewOCR builds an extractor for the given tesseract language code
// (e.g. "eng").
func NewOCR(language string, log *slog.Logger) *OCR {
	if language == "" {
		language = "eng"
	}
	return &OCR{language: language, log: log}
}

// Image runs OCR over the image bytes. The image is converted to
// grayscale and upscaled 2x first, which markedly improves recognition
// on low-DPI scans; when decoding fails (e.g. TIFF/BMP uploads) the
// original bytes go to tesseract as-is.
func (o *OCR) Image(ctx context.Context, data []byte) (string, error) {
	input := data
	if processed, err := preprocess(data); err == nil {
		input = processed
	} else {
		o.log.Warn("image preprocessing skipped", "err", err)
	}

	tmp, err := os.CreateTemp("", "medreader-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(input); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}

	cmd := exec.CommandContext(ctx, "tesseract", tmp.Name(), "stdout", "-l", o.language)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed (is it installed?): %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrUnrecognizableImage
	}
	o.log.Info("OCR extracted text", "chars", len(text))
	return text, nil
}

// preprocess converts the image to grayscale and doubles its
// resolution, re-encoded as PNG.
func preprocess(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	scaled := image.NewGray(image.Rect(0, 0, bounds.Dx()*2, bounds.Dy()*2))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// lowerExt returns the lowercase file extension including the dot.
func lowerExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
