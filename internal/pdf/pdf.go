// Package pdf renders Markdown documents as PDF.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

type Options struct {
	// Landscape switches the page from portrait to landscape
	Landscape bool
	Dark      bool
}

// ConvertMarkdownToPDF writes a PDF next to the given .md file and returns its absolute path.
func ConvertMarkdownToPDF(markdownPath string, opts Options) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	if err := Render(content, pdfPath, opts); err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}

// Render converts Markdown content into an A4 PDF at pdfPath.
func Render(content []byte, pdfPath string, opts Options) error {
	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}
	theme := mdtopdf.LIGHT
	if opts.Dark {
		theme = mdtopdf.DARK
	}

	renderer := mdtopdf.NewPdfRenderer(orientation, "A4", pdfPath, "", nil, theme)
	if err := renderer.Process(content); err != nil {
		return fmt.Errorf("renderer.Process() > %w", err)
	}
	return nil
}
