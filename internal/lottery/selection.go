package lottery

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// NoSpecialBall marks an unset special ball. Every pool starts at 1.
const NoSpecialBall = 0

// ToggleMain removes number from selection if present, otherwise adds it.
// Adding past the five-number cap leaves the selection unchanged. A number
// outside the main pool leaves it unchanged and returns *OutOfRangeError.
// The input slice is never modified.
func ToggleMain(selection []int, number int, t LotteryType) ([]int, error) {
	if i := slices.Index(selection, number); i >= 0 {
		return slices.Delete(slices.Clone(selection), i, i+1), nil
	}
	if !t.Valid() {
		return selection, ErrUnknownLotteryType
	}
	r := MainNumbersRange(t)
	if !r.Contains(number) {
		return selection, &OutOfRangeError{Type: t, Pool: PoolMain, Number: number, Range: r}
	}
	if len(selection) >= MainNumberCount {
		return selection, nil
	}
	return append(slices.Clone(selection), number), nil
}

// ToggleSpecial clears the special ball when number is already selected and
// otherwise replaces it. A number outside the special pool leaves the current
// value unchanged and returns *OutOfRangeError.
func ToggleSpecial(current, number int, t LotteryType) (int, error) {
	if current != NoSpecialBall && current == number {
		return NoSpecialBall, nil
	}
	if !t.Valid() {
		return current, ErrUnknownLotteryType
	}
	r := SpecialBallRange(t)
	if !r.Contains(number) {
		return current, &OutOfRangeError{Type: t, Pool: PoolSpecial, Number: number, Range: r}
	}
	return number, nil
}

// IsComplete reports whether a selection may become a ticket
func IsComplete(selection []int, special int) bool {
	return len(selection) == MainNumberCount && special != NoSpecialBall
}

// Validate checks a full selection that was set directly rather than built
// through the toggles, such as an API request or a scanned play
func Validate(main []int, special int, t LotteryType) error {
	if !t.Valid() {
		return ErrUnknownLotteryType
	}
	if !IsComplete(main, special) {
		return &IncompleteSelectionError{MainCount: len(main), HasSpecial: special != NoSpecialBall}
	}
	return checkNumbers(main, special, t)
}

// ValidatePartial checks a selection still being picked, such as one a client
// sends back before its next toggle. It may be short of numbers or lack a
// special ball, but what is there must be in range and unique.
func ValidatePartial(main []int, special int, t LotteryType) error {
	if !t.Valid() {
		return ErrUnknownLotteryType
	}
	if len(main) > MainNumberCount {
		return fmt.Errorf("%w: got %d", ErrTooManyNumbers, len(main))
	}
	return checkNumbers(main, special, t)
}

func checkNumbers(main []int, special int, t LotteryType) error {
	r := MainNumbersRange(t)
	seen := make(map[int]bool, len(main))
	for _, n := range main {
		if !r.Contains(n) {
			return &OutOfRangeError{Type: t, Pool: PoolMain, Number: n, Range: r}
		}
		if seen[n] {
			return &DuplicateSelectionError{Number: n}
		}
		seen[n] = true
	}
	if special == NoSpecialBall {
		return nil
	}
	if sr := SpecialBallRange(t); !sr.Contains(special) {
		return &OutOfRangeError{Type: t, Pool: PoolSpecial, Number: special, Range: sr}
	}
	return nil
}

// Selection is the working state of a ticket being picked. It belongs to the
// caller's session; the lottery type travels with it instead of living in
// shared state.
type Selection struct {
	Type    LotteryType `json:"type"`
	Main    []int       `json:"main_numbers"`
	Special int         `json:"special_ball"`
}

// NewSelection starts an empty selection for t
func NewSelection(t LotteryType) *Selection {
	return &Selection{Type: t, Main: []int{}}
}

// ToggleMain applies ToggleMain to the working state
func (s *Selection) ToggleMain(number int) error {
	next, err := ToggleMain(s.Main, number, s.Type)
	s.Main = next
	return err
}

// ToggleSpecial applies ToggleSpecial to the working state
func (s *Selection) ToggleSpecial(number int) error {
	next, err := ToggleSpecial(s.Special, number, s.Type)
	s.Special = next
	return err
}

// IsComplete reports whether the selection can be committed
func (s *Selection) IsComplete() bool {
	return IsComplete(s.Main, s.Special)
}

// Reset clears the picked numbers, keeping the lottery type
func (s *Selection) Reset() {
	s.Main = []int{}
	s.Special = NoSpecialBall
}

// Commit turns a complete selection into a pending ticket for drawDate and
// resets the selection. The ticket's main numbers are sorted ascending, so they
// match the picked order only when it was already ascending. Nothing is built
// when validation fails.
func (s *Selection) Commit(drawDate time.Time) (*Ticket, error) {
	if !s.IsComplete() {
		return nil, &IncompleteSelectionError{MainCount: len(s.Main), HasSpecial: s.Special != NoSpecialBall}
	}
	if err := Validate(s.Main, s.Special, s.Type); err != nil {
		return nil, err
	}

	numbers := slices.Clone(s.Main)
	slices.Sort(numbers)

	ticket := &Ticket{
		ID:          uuid.NewString(),
		Type:        s.Type,
		MainNumbers: numbers,
		SpecialBall: s.Special,
		DrawDate:    DrawDay(drawDate),
		Status:      StatusPending,
	}
	s.Reset()
	return ticket, nil
}
