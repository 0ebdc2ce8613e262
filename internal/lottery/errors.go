package lottery

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLotteryType = errors.New("unknown lottery type")
	ErrUnknownStatus      = errors.New("unknown ticket status")
	ErrTicketFinal        = errors.New("ticket is already final")
	ErrAlreadyChecked     = errors.New("ticket has already been checked")
	ErrDrawMismatch       = errors.New("draw result does not apply to ticket")
	ErrMissingDrawDate    = errors.New("draw date is required")
	ErrTooManyNumbers     = fmt.Errorf("more than %d main numbers selected", MainNumberCount)
)

// Pool names which set of numbers an error refers to
type Pool string

const (
	PoolMain    Pool = "main"
	PoolSpecial Pool = "special"
)

// IncompleteSelectionError is returned when a selection is committed or
// validated before it holds five main numbers and a special ball
type IncompleteSelectionError struct {
	MainCount  int
	HasSpecial bool
}

func (e *IncompleteSelectionError) Error() string {
	if !e.HasSpecial {
		return fmt.Sprintf("incomplete selection: %d of %d main numbers, no special ball", e.MainCount, MainNumberCount)
	}
	return fmt.Sprintf("incomplete selection: %d of %d main numbers", e.MainCount, MainNumberCount)
}

// OutOfRangeError is returned when a number falls outside its pool for the
// active lottery type
type OutOfRangeError struct {
	Type   LotteryType
	Pool   Pool
	Number int
	Range  Range
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s number %d is outside %s range %s", e.Pool, e.Number, e.Type.DisplayName(), e.Range)
}

// DuplicateSelectionError is returned when a main number appears more than once
type DuplicateSelectionError struct {
	Number int
}

func (e *DuplicateSelectionError) Error() string {
	return fmt.Sprintf("main number %d selected more than once", e.Number)
}

// IsSelectionError reports whether err is one of the validator's rejection
// errors, which callers surface back to the user rather than treat as faults
func IsSelectionError(err error) bool {
	var (
		incomplete *IncompleteSelectionError
		outOfRange *OutOfRangeError
		duplicate  *DuplicateSelectionError
	)
	return errors.As(err, &incomplete) ||
		errors.As(err, &outOfRange) ||
		errors.As(err, &duplicate) ||
		errors.Is(err, ErrTooManyNumbers) ||
		errors.Is(err, ErrUnknownLotteryType)
}
