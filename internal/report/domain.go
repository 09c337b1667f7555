// Package report hosts the service surface of the reporting engine: it
// persists uploaded ledger snapshots, builds the three reports from them,
// and serves the results over HTTP.
package report

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
)

// ErrSnapshotNotFound indicates the requested snapshot does not exist.
var ErrSnapshotNotFound = errors.New("report: snapshot not found")

// ErrSnapshotExists indicates an insert raced with an identical ID.
var ErrSnapshotExists = errors.New("report: snapshot already exists")

// SnapshotMeta is the listing view of a stored snapshot.
type SnapshotMeta struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	RowCount     int       `json:"row_count"`
	BadRowCount  int       `json:"bad_row_count"`
	AccountCount int       `json:"account_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is one fully loaded ledger upload. Reports are pure functions
// over a snapshot plus a requested date or period range, so a stored
// snapshot can be re-reported at any time.
type Snapshot struct {
	ID           uuid.UUID
	Name         string
	CreatedAt    time.Time
	Transactions []ledger.Transaction
	BadRows      []*ledger.RowError
	Openings     ledger.OpeningBalances
	Tables       mapping.Tables
}

// Meta summarises the snapshot for listings.
func (s Snapshot) Meta() SnapshotMeta {
	accounts := make(map[string]struct{})
	for _, tx := range s.Transactions {
		accounts[tx.Account] = struct{}{}
	}
	for account := range s.Openings {
		accounts[account] = struct{}{}
	}
	return SnapshotMeta{
		ID:           s.ID,
		Name:         s.Name,
		RowCount:     len(s.Transactions),
		BadRowCount:  len(s.BadRows),
		AccountCount: len(accounts),
		CreatedAt:    s.CreatedAt,
	}
}

// LatestDate returns the most recent posting date in the snapshot; reports
// default their as-of date to it.
func (s Snapshot) LatestDate() (time.Time, bool) {
	var latest time.Time
	for _, tx := range s.Transactions {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}
	return latest, !latest.IsZero()
}
