package extract

import (
	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders PDF pages with MuPDF.
type FitzRasterizer struct{}

// Open parses the PDF held in data.
func (FitzRasterizer) Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPNG(n int, dpi float64) ([]byte, error) {
	return d.doc.ImagePNG(n, dpi)
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
