package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionError indicates that text could not be pulled out of a source
// document. The caller is expected to surface Remediation to the user.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Remediation returns the user-facing hint shown when extraction fails.
func (e *ExtractionError) Remediation() string {
	return "could not read text from this document; copy-paste the statement text instead"
}

// ExtractText reads the plain text of a PDF statement. Pages that fail to
// decode individually are skipped; a document yielding no text at all is an
// extraction failure.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()

	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", &ExtractionError{Path: path, Err: fmt.Errorf("document yielded no text")}
	}
	return sb.String(), nil
}
