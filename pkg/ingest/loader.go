package ingest

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted text of one PDF page. Number is 0-based.
type Page struct {
	Number int
	Source string
	Text   string
}

// LoadPDF extracts the plain text of every page in the file at path. Pages
// without content are skipped.
func LoadPDF(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", i, path, err)
		}
		pages = append(pages, Page{Number: i - 1, Source: path, Text: text})
	}
	return pages, nil
}
