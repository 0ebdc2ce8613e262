package scanning

import (
	"time"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

// Scanner defines the interface for ticket text recognition
type Scanner interface {
	// RecognizeText reads a ticket photo and returns the text lines found on it,
	// top to bottom. The result is best effort and may be empty.
	RecognizeText(imageData []byte, contentType string) ([]string, error)
	// Close closes the scanner and releases resources
	Close() error
}

// Candidate is one play read off a ticket photo
type Candidate struct {
	MainNumbers []int     `json:"main_numbers"`
	SpecialBall int       `json:"special_ball"`
	DrawDate    time.Time `json:"draw_date"`
	Line        string    `json:"line"`            // Source text the play was read from
	Valid       bool      `json:"valid"`           // Passed the selection validator
	Error       string    `json:"error,omitempty"` // Validator message when not valid
}

// Scan is the outcome of reading one ticket photo
type Scan struct {
	Type       lottery.LotteryType `json:"type"`
	Lines      []string            `json:"lines"`
	DrawDate   *time.Time          `json:"draw_date,omitempty"` // Date printed on the ticket, if one was found
	Candidates []Candidate         `json:"candidates"`
}
