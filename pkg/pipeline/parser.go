package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// Parser turns a storage locator into ordered text segments. Zero segments is
// a valid, successful result (an empty but readable document).
type Parser interface {
	Parse(ctx context.Context, locator string) ([]Segment, error)
}

// FileParser reads documents from local storage under BaseDir.
// PDF pages come out one segment per page; docx/odt/rtf/txt extract as a
// single segment.
type FileParser struct {
	BaseDir     string
	PageTimeout time.Duration
}

func NewFileParser(baseDir string) *FileParser {
	return &FileParser{
		BaseDir:     baseDir,
		PageTimeout: 10 * time.Second,
	}
}

func (p *FileParser) Parse(ctx context.Context, locator string) ([]Segment, error) {
	path := filepath.Join(p.BaseDir, filepath.Clean("/"+locator))

	if _, err := os.Stat(path); err != nil {
		return nil, &ContentError{Stage: "parse", Message: fmt.Sprintf("document %s is not readable", locator), Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return p.parsePDF(ctx, path)
	case ".txt", ".md", ".docx", ".odt", ".rtf":
		return p.parseText(path)
	default:
		return nil, &ContentError{Stage: "parse", Message: fmt.Sprintf("unsupported format %q", filepath.Ext(path))}
	}
}

func (p *FileParser) parsePDF(ctx context.Context, path string) ([]Segment, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, &ContentError{Stage: "parse", Message: "failed to open pdf", Err: err}
	}

	var segments []Segment
	offset := 0
	for i := 1; i <= f.NumPage(); i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := p.protectExtract(page)
		if err != nil {
			// A single bad page doesn't poison the document.
			continue
		}

		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		segments = append(segments, Segment{
			Text:   content,
			Page:   i,
			Offset: offset,
		})
		offset += len(content)
	}

	return segments, nil
}

func (p *FileParser) parseText(path string) ([]Segment, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, &ContentError{Stage: "parse", Message: "failed to extract text", Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	return []Segment{{Text: text, Page: 1}}, nil
}

// protectExtract bounds GetPlainText, which can hang on malformed pages.
func (p *FileParser) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(p.PageTimeout):
		return "", errors.New("page extraction timed out")
	}
}
