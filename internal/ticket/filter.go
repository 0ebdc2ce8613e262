package ticket

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

// Filter narrows ticket and alert listings the way the tickets screen does:
// by lottery type, status chip and free-text search
type Filter struct {
	Type   lottery.LotteryType  // Empty matches every type
	Status lottery.TicketStatus // Empty or StatusAll matches every status
	Search string
}

// searchTerms splits the search text on whitespace and commas
func (f Filter) searchTerms() []string {
	return strings.FieldsFunc(strings.ToLower(f.Search), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// Match reports whether a ticket passes every part of the filter. Numeric
// search terms must appear among the ticket's numbers; other terms must
// appear in the game name, status or draw date.
func (f Filter) Match(t *lottery.Ticket) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if !t.Status.Matches(f.Status) {
		return false
	}

	text := strings.ToLower(strings.Join([]string{
		t.Type.DisplayName(),
		string(t.Status),
		t.DrawDate.Format("2006-01-02"),
		t.DrawDate.Format("Jan 2 2006"),
	}, " "))
	for _, term := range f.searchTerms() {
		if n, err := strconv.Atoi(term); err == nil {
			if !t.HasNumber(n) {
				return false
			}
			continue
		}
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// MatchAlert applies the filter to an alert. Numeric terms must be among the
// alerted ticket's numbers; other terms match its message.
func (f Filter) MatchAlert(a *Alert) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if !a.Status.Matches(f.Status) {
		return false
	}
	message := strings.ToLower(a.Message)
	for _, term := range f.searchTerms() {
		if n, err := strconv.Atoi(term); err == nil {
			if !slices.Contains(a.MainNumbers, n) && a.SpecialBall != n {
				return false
			}
			continue
		}
		if !strings.Contains(message, term) {
			return false
		}
	}
	return true
}
