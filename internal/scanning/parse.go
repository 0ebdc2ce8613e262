package scanning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

// parseLinesJSON extracts the transcribed lines from a model response
func parseLinesJSON(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Models sometimes wrap the object in prose; keep the outermost braces
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var payload struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	lines := make([]string, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`)
	// Matches "MAR20 24", "MAR 20, 2024" and "March 20 2024"
	monthDatePattern = regexp.MustCompile(`\b(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Z]*\.?\s*(\d{1,2}),?\s+(\d{2}|\d{4})\b`)
	digitRunPattern  = regexp.MustCompile(`\d+`)
)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March, "APR": time.April,
	"MAY": time.May, "JUN": time.June, "JUL": time.July, "AUG": time.August,
	"SEP": time.September, "OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// buildDate returns a UTC midnight date, rejecting impossible days like Feb 31
func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if year < 100 {
		year += 2000
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// findDate looks for a printed draw date in line
func findDate(line string) (time.Time, bool) {
	upper := strings.ToUpper(line)

	if m := isoDatePattern.FindStringSubmatch(upper); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if date, ok := buildDate(y, time.Month(mo), d); ok {
			return date, true
		}
	}
	if m := slashDatePattern.FindStringSubmatch(upper); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if date, ok := buildDate(y, time.Month(mo), d); ok {
			return date, true
		}
	}
	if m := monthDatePattern.FindStringSubmatch(upper); m != nil {
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if date, ok := buildDate(y, monthAbbrev[m[1]], d); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

// parsePlay reads a play row: at least six one- or two-digit numbers, the
// first five being main numbers and the sixth the special ball. Lines with
// longer digit runs (serials, barcodes, prices in cents) are not plays.
func parsePlay(line string) ([]int, int, bool) {
	runs := digitRunPattern.FindAllString(line, -1)
	if len(runs) < lottery.MainNumberCount+1 {
		return nil, 0, false
	}
	numbers := make([]int, 0, len(runs))
	for _, run := range runs {
		if len(run) > 2 {
			return nil, 0, false
		}
		n, _ := strconv.Atoi(run)
		numbers = append(numbers, n)
	}
	return numbers[:lottery.MainNumberCount], numbers[lottery.MainNumberCount], true
}

// ParseTicketText turns recognized lines into candidate plays for lottery
// type t. Each candidate carries the validator's verdict. When no draw date
// is printed, the next draw on or after now is assumed.
func ParseTicketText(lines []string, t lottery.LotteryType, now time.Time) *Scan {
	scan := &Scan{
		Type:       t,
		Lines:      lines,
		Candidates: []Candidate{},
	}
	if scan.Lines == nil {
		scan.Lines = []string{}
	}

	var plays []Candidate
	for _, line := range lines {
		if date, ok := findDate(line); ok {
			if scan.DrawDate == nil {
				scan.DrawDate = &date
			}
			continue
		}
		main, special, ok := parsePlay(line)
		if !ok {
			continue
		}
		plays = append(plays, Candidate{
			MainNumbers: main,
			SpecialBall: special,
			Line:        line,
		})
	}

	drawDate := lottery.NextDrawDate(t, now)
	if scan.DrawDate != nil {
		drawDate = *scan.DrawDate
	}
	for _, play := range plays {
		play.DrawDate = drawDate
		if err := lottery.Validate(play.MainNumbers, play.SpecialBall, t); err != nil {
			play.Error = err.Error()
		} else {
			play.Valid = true
		}
		scan.Candidates = append(scan.Candidates, play)
	}
	return scan
}
