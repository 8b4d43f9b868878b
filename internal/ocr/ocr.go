package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TextResult is the serialized payload produced by the OCR collaborator.
type TextResult struct {
	// Source is the path of the image the text came from.
	Source string `json:"source"`

	// Text is the extracted text with surrounding whitespace trimmed.
	// May be empty if the image contains no recognizable text.
	Text string `json:"text"`

	// Language is the Tesseract language code used for recognition.
	Language string `json:"language"`
}

// ExtractText runs Tesseract OCR over an image file.
//
// Parameters:
//   - path: Path to the image file. Any format Tesseract understands.
//   - language: Tesseract language code (e.g., "eng", "deu"). An empty
//     string selects English.
//
// Returns the trimmed extracted text, or an error if the engine could not
// process the image.
func ExtractText(path, language string) (string, error) {
	if language == "" {
		language = "eng"
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("setting OCR language %q: %w", language, err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("loading image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return strings.TrimSpace(text), nil
}

// Analyzer adapts ExtractText to the batch scheduler's analysis-function
// contract. The returned function is a pure function of the image bytes, as
// the content-addressed cache requires.
func Analyzer(language string) func(path string) (any, error) {
	return func(path string) (any, error) {
		text, err := ExtractText(path, language)
		if err != nil {
			return nil, err
		}
		lang := language
		if lang == "" {
			lang = "eng"
		}
		return &TextResult{Source: path, Text: text, Language: lang}, nil
	}
}
