package lottery

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// TicketStatus is the lifecycle state of a saved ticket
type TicketStatus string

const (
	// StatusAll only appears in filters, never on a ticket
	StatusAll     TicketStatus = "all"
	StatusPending TicketStatus = "pending"
	StatusChecked TicketStatus = "checked"
	StatusWinner  TicketStatus = "winner"
	StatusExpired TicketStatus = "expired"
)

// Statuses lists every status in filter order
func Statuses() []TicketStatus {
	return []TicketStatus{StatusAll, StatusPending, StatusChecked, StatusWinner, StatusExpired}
}

// ParseTicketStatus parses a status name, ignoring case. An empty string is
// treated as StatusAll.
func ParseTicketStatus(s string) (TicketStatus, error) {
	key := TicketStatus(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return StatusAll, nil
	}
	if slices.Contains(Statuses(), key) {
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Matches reports whether a ticket in status s passes the given filter
func (s TicketStatus) Matches(filter TicketStatus) bool {
	return filter == "" || filter == StatusAll || s == filter
}

// Final reports whether no further transition is possible
func (s TicketStatus) Final() bool {
	return s == StatusWinner || s == StatusExpired
}

// Ticket is a saved lottery play
type Ticket struct {
	ID          string       `json:"id"`
	Type        LotteryType  `json:"type"`
	MainNumbers []int        `json:"main_numbers"`
	SpecialBall int          `json:"special_ball"`
	DrawDate    time.Time    `json:"draw_date"`
	Status      TicketStatus `json:"status"`
	PrizeTier   int          `json:"prize_tier,omitempty"` // 0 unless a prize tier was awarded
	Photo       string       `json:"photo,omitempty"`      // Scanned photo filename, if any
	CheckedAt   *time.Time   `json:"checked_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasNumber reports whether n appears among the main numbers or as the special ball
func (t *Ticket) HasNumber(n int) bool {
	return t.SpecialBall == n || slices.Contains(t.MainNumbers, n)
}

// DrawResult holds the official numbers for one drawing
type DrawResult struct {
	Type        LotteryType `json:"type"`
	DrawDate    time.Time   `json:"draw_date"`
	MainNumbers []int       `json:"main_numbers"`
	SpecialBall int         `json:"special_ball"`
	RecordedAt  time.Time   `json:"recorded_at"`
}

// Key identifies the drawing a result belongs to
func (d *DrawResult) Key() string {
	return DrawKey(d.Type, d.DrawDate)
}

// Validate checks the official numbers against the same rules as a ticket
func (d *DrawResult) Validate() error {
	if d.DrawDate.IsZero() {
		return ErrMissingDrawDate
	}
	return Validate(d.MainNumbers, d.SpecialBall, d.Type)
}

// DrawKey builds the storage key for a (type, draw day) pair
func DrawKey(t LotteryType, drawDate time.Time) string {
	return string(t) + ":" + DrawDay(drawDate).Format("2006-01-02")
}
