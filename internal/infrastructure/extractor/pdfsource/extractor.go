package pdfsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

// Extractor pulls plain text out of PDF source files. Non-PDF sources are
// delegated to the fallback extractor.
type Extractor struct {
	storage  ports.ObjectStorage
	fallback ports.TextExtractor
}

func NewExtractor(storage ports.ObjectStorage, fallback ports.TextExtractor) *Extractor {
	return &Extractor{storage: storage, fallback: fallback}
}

func (e *Extractor) Extract(ctx context.Context, src *domain.SourceDocument) (string, error) {
	if !isPDF(src) {
		if e.fallback == nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf",
				fmt.Errorf("unsupported source type: %s", src.MimeType))
		}
		return e.fallback.Extract(ctx, src)
	}

	reader, err := e.storage.Open(ctx, src.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source file: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}

	doc, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "parse pdf",
			fmt.Errorf("%s: %w", src.Filename, err))
	}

	text, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, text); err != nil {
		return "", fmt.Errorf("collect pdf text: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

func isPDF(src *domain.SourceDocument) bool {
	if strings.EqualFold(src.MimeType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(src.Filename), ".pdf")
}
