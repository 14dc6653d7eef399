// Package textextract pulls plain text out of uploaded papers.
package textextract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidEncoding   = errors.New("text file is not valid UTF-8")
)

// SupportedExtensions lists the accepted upload types.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".md"}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Extract reads r fully and returns its text, choosing a decoder by the
// extension of filename.
func Extract(filename string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s failed: %w", filename, err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF(b)
	case ".docx":
		return DOCX(b)
	case ".txt", ".md":
		if !utf8.Valid(b) {
			return "", ErrInvalidEncoding
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// PDF returns the text of every page, pages separated by a blank line.
// A PDF without extractable text yields "".
func PDF(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d failed: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// DOCX returns the document body text, one paragraph per blank-line block.
func DOCX(b []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open docx failed: %w", err)
	}
	defer r.Close()

	return xmlToText(r.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	lineBreak    = regexp.MustCompile(`<w:(br|cr)\s*/>`)
	tab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
)

func xmlToText(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n\n")
	content = lineBreak.ReplaceAllString(content, "\n")
	content = tab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	paragraphs := strings.Split(content, "\n\n")
	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
