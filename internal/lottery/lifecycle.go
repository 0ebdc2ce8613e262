package lottery

import (
	"fmt"
	"time"
)

// Check compares a pending ticket against the official numbers of its drawing.
// The ticket becomes a winner when policy awards a tier and checked otherwise.
// A ticket is checked at most once.
func (t *Ticket) Check(draw *DrawResult, policy PrizePolicy, now time.Time) (TicketStatus, error) {
	switch {
	case t.Status.Final():
		return t.Status, fmt.Errorf("%w: %s", ErrTicketFinal, t.Status)
	case t.Status == StatusChecked:
		return t.Status, ErrAlreadyChecked
	case t.Status != StatusPending:
		return t.Status, fmt.Errorf("%w: %q", ErrUnknownStatus, t.Status)
	}
	if draw.Type != t.Type || DrawKey(t.Type, t.DrawDate) != draw.Key() {
		return t.Status, fmt.Errorf("%w: ticket %s drawn %s, result is %s",
			ErrDrawMismatch, t.ID, DrawKey(t.Type, t.DrawDate), draw.Key())
	}

	matches := CountMatches(t.MainNumbers, draw.MainNumbers)
	tier, won := policy.Award(matches, t.SpecialBall == draw.SpecialBall)
	if won {
		t.Status = StatusWinner
		t.PrizeTier = tier.Tier
	} else {
		t.Status = StatusChecked
	}
	t.CheckedAt = &now
	t.UpdatedAt = now
	return t.Status, nil
}

// ExpiresAt returns the moment after which an unsettled ticket expires
func (t *Ticket) ExpiresAt(grace time.Duration) time.Time {
	return DrawDay(t.DrawDate).Add(grace)
}

// Expire moves a pending or checked ticket to expired once now is past its
// draw date plus grace. It reports whether the status changed.
func (t *Ticket) Expire(now time.Time, grace time.Duration) (bool, error) {
	if t.Status.Final() {
		return false, fmt.Errorf("%w: %s", ErrTicketFinal, t.Status)
	}
	if !now.After(t.ExpiresAt(grace)) {
		return false, nil
	}
	t.Status = StatusExpired
	t.UpdatedAt = now
	return true, nil
}
