package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

const (
	ticketBucketName = "tickets"
	drawBucketName   = "draws"
	alertBucketName  = "alerts"
)

// ErrNotFound is returned when a ticket, draw result or alert does not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for database operations
type DB interface {
	// SaveTicket creates or replaces a ticket
	SaveTicket(ticket *lottery.Ticket) error

	// GetTicket retrieves a ticket by ID
	GetTicket(id string) (*lottery.Ticket, error)

	// ListTickets returns all tickets
	ListTickets() ([]*lottery.Ticket, error)

	// DeleteTicket removes a ticket from the database
	DeleteTicket(id string) error

	// SaveDrawResult stores the official numbers for a drawing
	SaveDrawResult(draw *lottery.DrawResult) error

	// GetDrawResult retrieves a drawing by its lottery.DrawKey
	GetDrawResult(key string) (*lottery.DrawResult, error)

	// ListDrawResults returns all recorded drawings
	ListDrawResults() ([]*lottery.DrawResult, error)

	// SaveAlert stores an alert
	SaveAlert(alert *Alert) error

	// ListAlerts returns all alerts
	ListAlerts() ([]*Alert, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{ticketBucketName, drawBucketName, alertBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) put(bucketName, key string, value any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", bucketName, err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

func (b *BoltDB) get(bucketName, key string, value any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%w: %s %s", ErrNotFound, bucketName, key)
		}
		return json.Unmarshal(data, value)
	})
}

// list decodes every value in a bucket into a fresh T
func list[T any](b *BoltDB, bucketName string) ([]*T, error) {
	items := make([]*T, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling %s %s: %w", bucketName, k, err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveTicket saves a ticket to the database
func (b *BoltDB) SaveTicket(ticket *lottery.Ticket) error {
	return b.put(ticketBucketName, ticket.ID, ticket)
}

// GetTicket retrieves a ticket by ID
func (b *BoltDB) GetTicket(id string) (*lottery.Ticket, error) {
	var ticket lottery.Ticket
	if err := b.get(ticketBucketName, id, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets returns all tickets
func (b *BoltDB) ListTickets() ([]*lottery.Ticket, error) {
	return list[lottery.Ticket](b, ticketBucketName)
}

// DeleteTicket removes a ticket from the database
func (b *BoltDB) DeleteTicket(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ticketBucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s %s", ErrNotFound, ticketBucketName, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// SaveDrawResult saves a drawing keyed by type and draw day
func (b *BoltDB) SaveDrawResult(draw *lottery.DrawResult) error {
	return b.put(drawBucketName, draw.Key(), draw)
}

// GetDrawResult retrieves a drawing by key
func (b *BoltDB) GetDrawResult(key string) (*lottery.DrawResult, error) {
	var draw lottery.DrawResult
	if err := b.get(drawBucketName, key, &draw); err != nil {
		return nil, err
	}
	return &draw, nil
}

// ListDrawResults returns all drawings
func (b *BoltDB) ListDrawResults() ([]*lottery.DrawResult, error) {
	return list[lottery.DrawResult](b, drawBucketName)
}

// SaveAlert saves an alert to the database
func (b *BoltDB) SaveAlert(alert *Alert) error {
	return b.put(alertBucketName, alert.ID, alert)
}

// ListAlerts returns all alerts
func (b *BoltDB) ListAlerts() ([]*Alert, error) {
	return list[Alert](b, alertBucketName)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
