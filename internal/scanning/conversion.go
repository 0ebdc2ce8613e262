package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ticketOCRPrompt is the shared prompt used by all vision model backends
const ticketOCRPrompt = `You are reading a photo of a printed US lottery ticket (Mega Millions or Powerball).
Transcribe every line of printed text exactly as it appears, top to bottom, left to right.

Rules:
- Keep numbers exactly as printed, including leading zeros (e.g. "03").
- Keep each printed row on its own line. A play row usually looks like "A. 03 17 22 45 70 MB 25" or "A 03 17 22 45 70 QP 25".
- Include the draw date line exactly as printed (e.g. "WED MAR20 24", "DRAW DATE 03/20/2024").
- Do not interpret, correct, or summarise anything.

Return ONLY valid JSON in this exact format:
{
  "lines": ["first line", "second line"]
}

If no text is readable, return {"lines": []}.
Do not include any text before or after the JSON and do not use markdown code blocks.`

// pdfToImage renders the first page of a PDF (a ticket scan) to an image
func pdfToImage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// decodeImage decodes JPEG, PNG, GIF and HEIC/HEIF photos
func decodeImage(imageData []byte, mimeType string) (image.Image, error) {
	// Phone cameras default to HEIC, which the standard image package can't read
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		if msg := err.Error(); strings.Contains(msg, "unknown format") || strings.Contains(msg, "unsupported") {
			return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// preparePhoto normalizes the MIME type and returns the photo as PNG bytes,
// converting PDFs and non-PNG images. The bool reports whether conversion occurred.
func preparePhoto(imageData []byte, contentType string) ([]byte, bool, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == "image/png" && !isHEICFormat(imageData) {
		return imageData, false, nil
	}

	var (
		img image.Image
		err error
	)
	if mimeType == "application/pdf" {
		img, err = pdfToImage(imageData)
	} else {
		img, err = decodeImage(imageData, mimeType)
	}
	if err != nil {
		return nil, false, fmt.Errorf("converting ticket photo to PNG: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), true, nil
}
