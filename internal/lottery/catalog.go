// Package lottery defines the supported lottery games, the ticket entity and
// its status lifecycle, and the rules for picking a valid set of numbers.
package lottery

import (
	"fmt"
	"strings"
	"time"
)

// LotteryType identifies a supported lottery game
type LotteryType string

const (
	MegaMillions LotteryType = "megamillions"
	Powerball    LotteryType = "powerball"
)

// MainNumberCount is how many main numbers a play holds for every supported game
const MainNumberCount = 5

// Range is an inclusive bound on a number pool
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n lies within the range
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// Empty reports whether the range holds no numbers
func (r Range) Empty() bool {
	return r.Max < r.Min || r.Max == 0
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

type gameInfo struct {
	name         string
	main         Range
	special      Range
	specialLabel string
	drawDays     []time.Weekday
}

var catalog = map[LotteryType]gameInfo{
	MegaMillions: {
		name:         "Mega Millions",
		main:         Range{Min: 1, Max: 70},
		special:      Range{Min: 1, Max: 25},
		specialLabel: "Mega Ball",
		drawDays:     []time.Weekday{time.Tuesday, time.Friday},
	},
	Powerball: {
		name:         "Powerball",
		main:         Range{Min: 1, Max: 69},
		special:      Range{Min: 1, Max: 26},
		specialLabel: "Power Ball",
		drawDays:     []time.Weekday{time.Monday, time.Wednesday, time.Saturday},
	},
}

// Types returns every supported lottery type in display order
func Types() []LotteryType {
	return []LotteryType{MegaMillions, Powerball}
}

// ParseLotteryType accepts either the slug ("powerball") or the display name
// ("Mega Millions"), ignoring case and surrounding whitespace
func ParseLotteryType(s string) (LotteryType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Types() {
		if key == string(t) || key == strings.ToLower(catalog[t].name) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLotteryType, s)
}

// Valid reports whether t is part of the catalog
func (t LotteryType) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// DisplayName returns the human readable game name
func (t LotteryType) DisplayName() string {
	if info, ok := catalog[t]; ok {
		return info.name
	}
	return string(t)
}

// MainNumbersRange returns the pool the five main numbers are drawn from
func MainNumbersRange(t LotteryType) Range {
	return catalog[t].main
}

// SpecialBallRange returns the pool the special ball is drawn from
func SpecialBallRange(t LotteryType) Range {
	return catalog[t].special
}

// SpecialBallLabel returns the game's name for its special ball
func SpecialBallLabel(t LotteryType) string {
	return catalog[t].specialLabel
}

// DrawDays returns the weekdays the game holds a drawing on
func DrawDays(t LotteryType) []time.Weekday {
	return catalog[t].drawDays
}

// NextDrawDate returns the first draw day for t on or after from's calendar day.
// The result is truncated to midnight UTC.
func NextDrawDate(t LotteryType, from time.Time) time.Time {
	day := DrawDay(from)
	days := DrawDays(t)
	if len(days) == 0 {
		return day
	}
	for i := 0; i < 7; i++ {
		candidate := day.AddDate(0, 0, i)
		for _, wd := range days {
			if candidate.Weekday() == wd {
				return candidate
			}
		}
	}
	return day
}

// DrawDay truncates a timestamp to the calendar day it falls on, in UTC
func DrawDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
