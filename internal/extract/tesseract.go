package extract

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer reads page images with Tesseract. A client is created
// per page because gosseract clients are not safe for concurrent use.
type TesseractRecognizer struct {
	Language string
}

// Recognize returns the text found in a PNG image.
func (t TesseractRecognizer) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.Language != "" {
		if err := client.SetLanguage(t.Language); err != nil {
			return "", err
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", err
	}
	return client.Text()
}
