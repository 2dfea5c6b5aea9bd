// Package extract turns uploaded report files into plain text. The
// analysis pipeline only ever sees text (or, for multimodal providers,
// the original image bytes); everything here is a narrow collaborator
// in front of it.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadableDocument reports a PDF that yielded no text, usually a
// scanned/image-based document. Callers should suggest the image
// upload path instead.
var ErrUnreadableDocument = errors.New("could not extract text from PDF; the file may be scanned or image-based, try uploading an image (JPG/PNG) for OCR instead")

// Document extracts plain text from a PDF.
func Document(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", ErrUnreadableDocument
	}
	return text, nil
}
