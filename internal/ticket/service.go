package ticket

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/lotto-tracker/internal/lottery"
	"github.com/zombor/lotto-tracker/internal/scanning"
)

var (
	// ErrDrawRecorded is returned when official numbers for a drawing already exist
	ErrDrawRecorded = errors.New("draw result already recorded")
	// ErrEmptyPhoto is returned when a scan is requested without image data
	ErrEmptyPhoto = errors.New("ticket photo is empty")
)

// IDGenerator generates unique IDs for scans and alerts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random (v4) UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Options configures how tickets are settled
type Options struct {
	// Policy decides which matches make a winner
	Policy lottery.PrizePolicy
	// GracePeriod is how long after its draw day an unsettled ticket stays live
	GracePeriod time.Duration
}

// DefaultGracePeriod applies when Options.GracePeriod is zero
const DefaultGracePeriod = 24 * time.Hour

// Service handles ticket operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
	policy      lottery.PrizePolicy
	gracePeriod time.Duration

	// settleMu serializes the read-modify-write passes over tickets
	settleMu sync.Mutex
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, opts Options) *Service {
	return NewServiceWithDeps(db, scanner, storage, opts, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, opts Options, idGen IDGenerator, timeSrc TimeSource) *Service {
	if opts.Policy == "" {
		opts.Policy = lottery.PolicyJackpot
	}
	if opts.GracePeriod == 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
		policy:      opts.Policy,
		gracePeriod: opts.GracePeriod,
	}
}

// LotteryInfo describes one game for clients building a number picker
type LotteryInfo struct {
	Type             lottery.LotteryType `json:"type"`
	Name             string              `json:"name"`
	MainNumbers      lottery.Range       `json:"main_numbers"`
	MainNumberCount  int                 `json:"main_number_count"`
	SpecialBall      lottery.Range       `json:"special_ball"`
	SpecialBallLabel string              `json:"special_ball_label"`
	DrawDays         []string            `json:"draw_days"`
	NextDrawDate     time.Time           `json:"next_draw_date"`
}

// Lotteries returns the catalog of supported games
func (s *Service) Lotteries() []LotteryInfo {
	now := s.timeSource.Now()
	infos := make([]LotteryInfo, 0, len(lottery.Types()))
	for _, t := range lottery.Types() {
		days := make([]string, 0, len(lottery.DrawDays(t)))
		for _, d := range lottery.DrawDays(t) {
			days = append(days, d.String())
		}
		infos = append(infos, LotteryInfo{
			Type:             t,
			Name:             t.DisplayName(),
			MainNumbers:      lottery.MainNumbersRange(t),
			MainNumberCount:  lottery.MainNumberCount,
			SpecialBall:      lottery.SpecialBallRange(t),
			SpecialBallLabel: lottery.SpecialBallLabel(t),
			DrawDays:         days,
			NextDrawDate:     lottery.NextDrawDate(t, now),
		})
	}
	return infos
}

// NewTicket is a selection submitted for saving
type NewTicket struct {
	Type        lottery.LotteryType
	MainNumbers []int
	SpecialBall int
	DrawDate    time.Time // Zero means the next draw
	ScanID      string    // Photo from a previous scan, optional
}

// CommitTicket validates a selection and saves it as a pending ticket
func (s *Service) CommitTicket(req NewTicket) (*lottery.Ticket, error) {
	// Selections set directly skip the toggles, so run the full guard first
	if err := lottery.Validate(req.MainNumbers, req.SpecialBall, req.Type); err != nil {
		return nil, err
	}

	now := s.timeSource.Now()
	drawDate := req.DrawDate
	if drawDate.IsZero() {
		drawDate = lottery.NextDrawDate(req.Type, now)
	}

	sel := &lottery.Selection{Type: req.Type, Main: req.MainNumbers, Special: req.SpecialBall}
	ticket, err := sel.Commit(drawDate)
	if err != nil {
		return nil, err
	}
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	if req.ScanID != "" {
		if _, err := s.storage.Get(req.ScanID); err != nil {
			return nil, fmt.Errorf("%w: scan %s", ErrNotFound, req.ScanID)
		}
		ticket.Photo = req.ScanID
	}

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	// The official numbers may already be in
	var checked lottery.TicketStatus
	draw, err := s.db.GetDrawResult(lottery.DrawKey(ticket.Type, ticket.DrawDate))
	switch {
	case err == nil:
		if checked, err = ticket.Check(draw, s.policy, now); err != nil {
			return nil, fmt.Errorf("checking ticket: %w", err)
		}
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("getting draw result: %w", err)
	}

	if err := s.db.SaveTicket(ticket); err != nil {
		return nil, fmt.Errorf("saving ticket to database: %w", err)
	}
	if checked != "" {
		if err := s.raiseAlert(ticket, checkMessage(ticket, checked)); err != nil {
			return nil, err
		}
	}

	slog.Info("Ticket saved",
		"id", ticket.ID,
		"type", ticket.Type,
		"draw_date", ticket.DrawDate.Format("2006-01-02"),
		"status", ticket.Status,
	)
	return ticket, nil
}

// ScanResult is a scanned photo plus the plays read from it
type ScanResult struct {
	ScanID string `json:"scan_id"`
	*scanning.Scan
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	// Phones produce long names like IMG_20240319_181502_123456789
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "ticket"
	}
	ext = unsafeFilenameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ScanTicket stores a ticket photo, recognizes its text and parses the plays
// on it. Recognition failures are not fatal: the scan comes back with no
// lines and no candidates.
func (s *Service) ScanTicket(filename string, data []byte, contentType string, t lottery.LotteryType) (*ScanResult, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", lottery.ErrUnknownLotteryType, t)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPhoto
	}

	name := fmt.Sprintf("scan_%s_%s", s.idGenerator.Generate(), sanitizeFilename(filename))
	scanID, err := s.storage.Save(name, data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	lines, err := s.scanner.RecognizeText(data, contentType)
	if err != nil {
		slog.Warn("Failed to recognize ticket text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		lines = nil
	}

	scan := scanning.ParseTicketText(lines, t, s.timeSource.Now())
	slog.Info("Ticket scanned",
		"scan_id", scanID,
		"type", t,
		"lines", len(scan.Lines),
		"candidates", len(scan.Candidates),
	)
	return &ScanResult{ScanID: scanID, Scan: scan}, nil
}

// GetTicket retrieves a ticket by ID
func (s *Service) GetTicket(id string) (*lottery.Ticket, error) {
	ticket, err := s.db.GetTicket(id)
	if err != nil {
		return nil, fmt.Errorf("getting ticket: %w", err)
	}
	return ticket, nil
}

// ListTickets returns the tickets passing f, latest draw first
func (s *Service) ListTickets(f Filter) ([]*lottery.Ticket, error) {
	tickets, err := s.db.ListTickets()
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}

	matched := make([]*lottery.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Match(t) {
			matched = append(matched, t)
		}
	}
	slices.SortFunc(matched, func(a, b *lottery.Ticket) int {
		return cmp.Or(
			b.DrawDate.Compare(a.DrawDate),
			b.CreatedAt.Compare(a.CreatedAt),
			strings.Compare(a.ID, b.ID),
		)
	})
	return matched, nil
}

// DeleteTicket removes a ticket. Its photo goes too unless another ticket
// saved from the same scan still uses it.
func (s *Service) DeleteTicket(id string) error {
	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	ticket, err := s.db.GetTicket(id)
	if err != nil {
		return fmt.Errorf("getting ticket for deletion: %w", err)
	}

	shared := false
	if ticket.Photo != "" {
		tickets, err := s.db.ListTickets()
		if err != nil {
			return fmt.Errorf("listing tickets: %w", err)
		}
		shared = slices.ContainsFunc(tickets, func(t *lottery.Ticket) bool {
			return t.ID != id && t.Photo == ticket.Photo
		})
	}

	if ticket.Photo != "" && !shared {
		if err := s.storage.Delete(ticket.Photo); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete ticket photo", "photo", ticket.Photo, "error", err)
		}
	}

	if err := s.db.DeleteTicket(id); err != nil {
		return fmt.Errorf("deleting ticket from database: %w", err)
	}
	return nil
}

// GetTicketPhoto retrieves the scanned photo for a ticket
func (s *Service) GetTicketPhoto(id string) ([]byte, string, error) {
	ticket, err := s.db.GetTicket(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting ticket: %w", err)
	}
	if ticket.Photo == "" {
		return nil, "", fmt.Errorf("%w: ticket %s has no photo", ErrNotFound, id)
	}

	data, err := s.storage.Get(ticket.Photo)
	if err != nil {
		return nil, "", fmt.Errorf("getting ticket photo: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

// DrawOutcome is a recorded drawing and the tickets it settled
type DrawOutcome struct {
	Draw    *lottery.DrawResult `json:"draw"`
	Tickets []*lottery.Ticket   `json:"tickets"`
}

// RecordDrawResult checks every pending ticket for a drawing and then stores
// the official numbers. A drawing can only be recorded once. When settling a
// ticket fails the draw is not stored, so the call can be retried.
func (s *Service) RecordDrawResult(draw lottery.DrawResult) (*DrawOutcome, error) {
	if err := draw.Validate(); err != nil {
		return nil, err
	}

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	now := s.timeSource.Now()
	draw.DrawDate = lottery.DrawDay(draw.DrawDate)
	draw.MainNumbers = slices.Sorted(slices.Values(draw.MainNumbers))
	draw.RecordedAt = now

	if _, err := s.db.GetDrawResult(draw.Key()); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDrawRecorded, draw.Key())
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("getting draw result: %w", err)
	}

	tickets, err := s.db.ListTickets()
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}

	outcome := &DrawOutcome{Draw: &draw, Tickets: []*lottery.Ticket{}}
	for _, t := range tickets {
		if t.Status != lottery.StatusPending || lottery.DrawKey(t.Type, t.DrawDate) != draw.Key() {
			continue
		}
		// Check a copy so a failed save leaves the stored ticket pending
		settled := *t
		status, err := settled.Check(&draw, s.policy, now)
		if err != nil {
			slog.Warn("Failed to check ticket", "id", t.ID, "error", err)
			continue
		}
		if err := s.db.SaveTicket(&settled); err != nil {
			return nil, fmt.Errorf("updating ticket %s: %w", t.ID, err)
		}
		if err := s.raiseAlert(&settled, checkMessage(&settled, status)); err != nil {
			return nil, err
		}
		outcome.Tickets = append(outcome.Tickets, &settled)
	}

	if err := s.db.SaveDrawResult(&draw); err != nil {
		return nil, fmt.Errorf("saving draw result: %w", err)
	}

	slog.Info("Draw result recorded",
		"draw", draw.Key(),
		"checked", len(outcome.Tickets),
		"policy", s.policy,
	)
	return outcome, nil
}

// ListDrawResults returns recorded drawings, latest first
func (s *Service) ListDrawResults() ([]*lottery.DrawResult, error) {
	draws, err := s.db.ListDrawResults()
	if err != nil {
		return nil, fmt.Errorf("listing draw results: %w", err)
	}
	slices.SortFunc(draws, func(a, b *lottery.DrawResult) int {
		return cmp.Or(b.DrawDate.Compare(a.DrawDate), strings.Compare(string(a.Type), string(b.Type)))
	})
	return draws, nil
}

// ExpireTickets expires every pending or checked ticket whose grace period
// has passed and returns the tickets that changed
func (s *Service) ExpireTickets() ([]*lottery.Ticket, error) {
	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	tickets, err := s.db.ListTickets()
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}

	now := s.timeSource.Now()
	expired := make([]*lottery.Ticket, 0)
	for _, t := range tickets {
		if t.Status.Final() {
			continue
		}
		changed, err := t.Expire(now, s.gracePeriod)
		if err != nil || !changed {
			continue
		}
		if err := s.db.SaveTicket(t); err != nil {
			return nil, fmt.Errorf("updating ticket %s: %w", t.ID, err)
		}
		msg := fmt.Sprintf("%s ticket %s for %s has expired", t.Type.DisplayName(), formatNumbers(t), t.DrawDate.Format("2006-01-02"))
		if err := s.raiseAlert(t, msg); err != nil {
			return nil, err
		}
		expired = append(expired, t)
	}

	if len(expired) > 0 {
		slog.Info("Tickets expired", "count", len(expired), "grace_period", s.gracePeriod)
	}
	return expired, nil
}

// ListAlerts returns alerts passing f, newest first
func (s *Service) ListAlerts(f Filter) ([]*Alert, error) {
	alerts, err := s.db.ListAlerts()
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}

	matched := make([]*Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.MatchAlert(a) {
			matched = append(matched, a)
		}
	}
	slices.SortFunc(matched, func(a, b *Alert) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return matched, nil
}

func (s *Service) raiseAlert(t *lottery.Ticket, message string) error {
	alert := &Alert{
		ID:          s.idGenerator.Generate(),
		TicketID:    t.ID,
		Type:        t.Type,
		Status:      t.Status,
		MainNumbers: slices.Clone(t.MainNumbers),
		SpecialBall: t.SpecialBall,
		Message:     message,
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.db.SaveAlert(alert); err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

func checkMessage(t *lottery.Ticket, status lottery.TicketStatus) string {
	prefix := fmt.Sprintf("%s ticket %s for %s", t.Type.DisplayName(), formatNumbers(t), t.DrawDate.Format("2006-01-02"))
	if status == lottery.StatusWinner {
		tier, _ := lottery.LookupTier(t.PrizeTier)
		return fmt.Sprintf("%s is a winner (%s)", prefix, tier.Name)
	}
	return prefix + " did not win"
}

// formatNumbers renders a play as "03 17 22 45 70 + 05"
func formatNumbers(t *lottery.Ticket) string {
	parts := make([]string, 0, len(t.MainNumbers)+2)
	for _, n := range t.MainNumbers {
		parts = append(parts, fmt.Sprintf("%02d", n))
	}
	parts = append(parts, "+", fmt.Sprintf("%02d", t.SpecialBall))
	return strings.Join(parts, " ")
}
