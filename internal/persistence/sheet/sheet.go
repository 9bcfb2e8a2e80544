// Package sheet stores reservations in a single CSV sheet: one header row and
// one reservation per row in a fixed nine-column order. Rows are unordered on
// disk; appends go to the end and updates or deletes rewrite the file.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// Header is the first row of every sheet.
var Header = []string{
	"Reservation ID",
	"Room ID",
	"Room Name",
	"Date",
	"Start Time",
	"End Time",
	"Reserved By",
	"Company",
	"Created At",
}

const (
	colID = iota
	colRoomID
	colRoomName
	colDate
	colStartTime
	colEndTime
	colReservedBy
	colCompany
	colCreatedAt
	columnCount
)

// Storage is a CSV file backed reservation store.
type Storage struct {
	mu   sync.Mutex
	path string
	opts persistence.Options
}

var _ persistence.ReservationRepository = (*Storage)(nil)

// Open returns a store over the sheet at path, writing the header row when the
// file is missing or empty.
func Open(path string, opts ...persistence.Option) (*Storage, error) {
	s := &Storage{path: path, opts: persistence.NewOptions(opts...)}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases resources held by the storage. The sheet keeps no open handles.
func (s *Storage) Close() error {
	return nil
}

// Migrate ensures the header row exists.
func (s *Storage) Migrate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialize()
}

func (s *Storage) initialize() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sheet: create directory: %w", err)
		}
	}
	info, err := os.Stat(s.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sheet: stat: %w", err)
	}
	return s.writeAll(nil)
}

// ListReservations returns every well-formed row in file order.
func (s *Storage) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	out := make([]persistence.Reservation, 0, len(rows))
	for _, row := range rows {
		if r, ok := rowToReservation(row); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetReservation retrieves a reservation by ID.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	all, err := s.ListReservations(ctx)
	if err != nil {
		return persistence.Reservation{}, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return persistence.Reservation{}, persistence.ErrNotFound
}

// CreateReservation assigns an ID and CreatedAt and appends a row.
func (s *Storage) CreateReservation(ctx context.Context, draft persistence.ReservationDraft) (persistence.Reservation, error) {
	if err := draft.Validate(); err != nil {
		return persistence.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return persistence.Reservation{}, err
	}
	r := draft.Reservation(s.opts.IDGenerator(), s.opts.Timestamp())
	for _, row := range rows {
		if len(row) > colID && row[colID] == r.ID {
			return persistence.Reservation{}, persistence.ErrDuplicate
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return persistence.Reservation{}, fmt.Errorf("sheet: open for append: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(reservationToRow(r)); err != nil {
		f.Close()
		return persistence.Reservation{}, fmt.Errorf("sheet: append: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return persistence.Reservation{}, fmt.Errorf("sheet: append: %w", err)
	}
	if err := f.Close(); err != nil {
		return persistence.Reservation{}, fmt.Errorf("sheet: close: %w", err)
	}
	return r, nil
}

// UpdateReservation merges patch onto the matching row and rewrites the sheet.
func (s *Storage) UpdateReservation(ctx context.Context, id string, patch persistence.ReservationPatch) (persistence.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return persistence.Reservation{}, err
	}
	for i, row := range rows {
		r, ok := rowToReservation(row)
		if !ok || r.ID != id {
			continue
		}
		updated := patch.Apply(r)
		next := reservationToRow(updated)
		// Keep the stored timestamp text so an unparseable value survives untouched.
		next[colCreatedAt] = row[colCreatedAt]
		rows[i] = next
		if err := s.writeAll(rows); err != nil {
			return persistence.Reservation{}, err
		}
		return updated, nil
	}
	return persistence.Reservation{}, persistence.ErrNotFound
}

// DeleteReservation removes the matching row and rewrites the sheet.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) > colID && row[colID] == id {
			rows = append(rows[:i], rows[i+1:]...)
			return s.writeAll(rows)
		}
	}
	return persistence.ErrNotFound
}

// ListFilteredReservations returns matching reservations ordered by date and start time.
func (s *Storage) ListFilteredReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	all, err := s.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return persistence.FilterReservations(all, filter), nil
}

// readRows returns every row below the header.
func (s *Storage) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: read: %w", err)
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// writeAll replaces the sheet with the header followed by rows.
func (s *Storage) writeAll(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("sheet: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return fmt.Errorf("sheet: write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("sheet: write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sheet: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("sheet: replace: %w", err)
	}
	return nil
}

func reservationToRow(r persistence.Reservation) []string {
	row := make([]string, columnCount)
	row[colID] = r.ID
	row[colRoomID] = r.RoomID
	row[colRoomName] = r.RoomName
	row[colDate] = r.Date
	row[colStartTime] = r.StartTime
	row[colEndTime] = r.EndTime
	row[colReservedBy] = r.ReservedBy
	row[colCompany] = r.Company
	row[colCreatedAt] = r.CreatedAt.UTC().Format(persistence.StoredTimestampLayout)
	return row
}

// rowToReservation converts a row, rejecting short rows and rows without an ID.
func rowToReservation(row []string) (persistence.Reservation, bool) {
	if len(row) < columnCount || row[colID] == "" {
		return persistence.Reservation{}, false
	}
	r := persistence.Reservation{
		ID:         row[colID],
		RoomID:     row[colRoomID],
		RoomName:   row[colRoomName],
		Date:       row[colDate],
		StartTime:  row[colStartTime],
		EndTime:    row[colEndTime],
		ReservedBy: row[colReservedBy],
		Company:    row[colCompany],
	}
	if t, err := time.Parse(time.RFC3339Nano, row[colCreatedAt]); err == nil {
		r.CreatedAt = t.UTC()
	}
	return r, true
}
