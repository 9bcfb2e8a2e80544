package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/availability"
	"github.com/example/room-reservations/internal/lock"
	"github.com/example/room-reservations/internal/persistence"
)

// ReservationStore captures the persistence interactions needed by the service.
type ReservationStore interface {
	ListReservations(ctx context.Context) ([]persistence.Reservation, error)
	GetReservation(ctx context.Context, id string) (persistence.Reservation, error)
	CreateReservation(ctx context.Context, draft persistence.ReservationDraft) (persistence.Reservation, error)
	UpdateReservation(ctx context.Context, id string, patch persistence.ReservationPatch) (persistence.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	ListFilteredReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error)
}

// Locker serialises writes that target the same room and date.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// maxRelock bounds how often Update and Delete retry when the target moves
// between the read that picks the lock key and the read under the lock.
const maxRelock = 3

// ReservationService validates reservations, checks them for conflicts and
// persists them. Writes for one room and date are serialised through the
// locker, so the conflict check and the write observe the same store state.
type ReservationService struct {
	store   ReservationStore
	locker  Locker
	catalog *RoomCatalog
	policy  availability.Policy
	now     func() time.Time
	logger  *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(store ReservationStore, locker Locker, catalog *RoomCatalog, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(store, locker, catalog, now, nil)
}

// NewReservationServiceWithLogger wires dependencies with a specified logger.
func NewReservationServiceWithLogger(store ReservationStore, locker Locker, catalog *RoomCatalog, now func() time.Time, logger *slog.Logger) *ReservationService {
	if locker == nil {
		locker = lock.NewKeyed()
	}
	if catalog == nil {
		catalog = NewRoomCatalog(nil, nil, availability.Grid{})
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		store:   store,
		locker:  locker,
		catalog: catalog,
		policy:  availability.DefaultPolicy,
		now:     now,
		logger:  defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Rooms returns the configured rooms.
func (s *ReservationService) Rooms() []Room {
	if s == nil {
		return nil
	}
	return s.catalog.Rooms()
}

// Companies returns the accepted company names.
func (s *ReservationService) Companies() []string {
	if s == nil {
		return nil
	}
	return s.catalog.Companies()
}

// Create validates the input, checks the slot against the current store
// contents and persists the reservation.
func (s *ReservationService) Create(ctx context.Context, input ReservationInput) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	input = trimInput(input)
	logger := s.loggerWith(ctx, "Create",
		"room_id", input.RoomID,
		"date", input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	if vErr := requireInput(input); vErr != nil {
		err = vErr
		return
	}

	room, ok := s.catalog.Room(input.RoomID)
	if !ok {
		err = invalid("roomId", ErrUnknownRoom)
		return
	}
	if !s.catalog.HasCompany(input.Company) {
		err = invalid("company", ErrUnknownCompany)
		return
	}

	var candidate availability.Interval
	candidate, err = s.validateSlot("", input.RoomID, input.Date, input.StartTime, input.EndTime)
	if err != nil {
		return
	}

	var unlock func()
	unlock, err = s.locker.Lock(ctx, lock.SlotKey(input.RoomID, input.Date))
	if err != nil {
		return
	}
	defer unlock()

	if err = s.ensureAvailable(ctx, logger, candidate); err != nil {
		return
	}

	var record persistence.Reservation
	record, err = s.store.CreateReservation(ctx, persistence.ReservationDraft{
		RoomID:     input.RoomID,
		RoomName:   room.Name,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		ReservedBy: input.ReservedBy,
		Company:    input.Company,
	})
	if err != nil {
		err = s.storeError(ctx, logger, err)
		return
	}

	reservation = fromRecord(record)
	return
}

// Update merges the patch onto the stored reservation. Date, time and conflict
// checks always run against the merged result, excluding the reservation itself.
func (s *ReservationService) Update(ctx context.Context, id string, patch ReservationPatch) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	id = strings.TrimSpace(id)
	patch = trimPatch(patch)
	logger := s.loggerWith(ctx, "Update", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"room_id", reservation.RoomID,
			"date", reservation.Date,
		).InfoContext(ctx, "reservation updated")
	}()

	if id == "" {
		err = ErrNotFound
		return
	}
	if vErr := requirePatch(patch); vErr != nil {
		err = vErr
		return
	}

	change := persistence.ReservationPatch{
		RoomID:     patch.RoomID,
		Date:       patch.Date,
		StartTime:  patch.StartTime,
		EndTime:    patch.EndTime,
		ReservedBy: patch.ReservedBy,
		Company:    patch.Company,
	}
	if patch.RoomID != nil {
		room, ok := s.catalog.Room(*patch.RoomID)
		if !ok {
			err = invalid("roomId", ErrUnknownRoom)
			return
		}
		change.RoomName = &room.Name
	}
	if patch.Company != nil && !s.catalog.HasCompany(*patch.Company) {
		err = invalid("company", ErrUnknownCompany)
		return
	}

	var (
		merged persistence.Reservation
		unlock func()
	)
	merged, unlock, err = s.lockTarget(ctx, id, change.Apply)
	if err != nil {
		return
	}
	defer unlock()

	var candidate availability.Interval
	candidate, err = s.validateSlot(id, merged.RoomID, merged.Date, merged.StartTime, merged.EndTime)
	if err != nil {
		return
	}
	if err = s.ensureAvailable(ctx, logger, candidate); err != nil {
		return
	}

	// The stored slot must be exactly the one checked under the lock, even if
	// another edit of this reservation wrote in between.
	change.RoomID = &merged.RoomID
	change.RoomName = &merged.RoomName
	change.Date = &merged.Date
	change.StartTime = &merged.StartTime
	change.EndTime = &merged.EndTime

	var record persistence.Reservation
	record, err = s.store.UpdateReservation(ctx, id, change)
	if err != nil {
		err = s.storeError(ctx, logger, err)
		return
	}

	reservation = fromRecord(record)
	return
}

// Delete permanently removes a reservation.
func (s *ReservationService) Delete(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("reservation store not configured")
	}

	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "Delete", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation deleted")
	}()

	if id == "" {
		return ErrNotFound
	}

	_, unlock, err := s.lockTarget(ctx, id, nil)
	if err != nil {
		return err
	}
	defer unlock()

	if err = s.store.DeleteReservation(ctx, id); err != nil {
		err = s.storeError(ctx, logger, err)
		return err
	}
	return nil
}

// Get returns a single reservation.
func (s *ReservationService) Get(ctx context.Context, id string) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "Get", "reservation_id", id)
	if id == "" {
		err = ErrNotFound
		return
	}

	record, err := s.store.GetReservation(ctx, id)
	if err != nil {
		err = s.storeError(ctx, logger, err)
		if !errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "failed to get reservation", "error", err, "error_kind", ErrorKind(err))
		}
		return
	}
	reservation = fromRecord(record)
	return
}

// List returns the reservations matching filter, ordered by date and start time.
func (s *ReservationService) List(ctx context.Context, filter ReservationFilter) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	filter = ReservationFilter{
		RoomID:    strings.TrimSpace(filter.RoomID),
		Date:      strings.TrimSpace(filter.Date),
		Company:   strings.TrimSpace(filter.Company),
		StartDate: strings.TrimSpace(filter.StartDate),
		EndDate:   strings.TrimSpace(filter.EndDate),
	}
	logger := s.loggerWith(ctx, "List",
		"room_id", filter.RoomID,
		"date", filter.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(reservations)).DebugContext(ctx, "reservations listed")
	}()

	var records []persistence.Reservation
	records, err = s.store.ListFilteredReservations(ctx, filter.record())
	if err != nil {
		err = s.storeError(ctx, logger, err)
		return
	}
	reservations = fromRecords(records)
	return
}

// Calendar projects the reservations of the selected dates onto the slot grid
// of every room.
func (s *ReservationService) Calendar(ctx context.Context, query CalendarQuery) (calendar Calendar, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Calendar",
		"week", query.Week,
		"start_date", query.StartDate,
		"end_date", query.EndDate,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build calendar", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservations", len(calendar.Reservations)).DebugContext(ctx, "calendar built")
	}()

	now := s.now()
	var dates []time.Time
	dates, err = calendarDates(query, now)
	if err != nil {
		return
	}

	var records []persistence.Reservation
	records, err = s.store.ListFilteredReservations(ctx, persistence.ReservationFilter{
		StartDate: availability.FormatDate(dates[0]),
		EndDate:   availability.FormatDate(dates[len(dates)-1]),
	})
	if err != nil {
		err = s.storeError(ctx, logger, err)
		return
	}

	intervals := make([]availability.Interval, 0, len(records))
	for _, r := range records {
		iv, parseErr := availability.NewInterval(r.ID, r.RoomID, r.Date, r.StartTime, r.EndTime)
		if parseErr != nil {
			logger.WarnContext(ctx, "skipping unreadable reservation", "reservation_id", r.ID, "error", parseErr)
			continue
		}
		intervals = append(intervals, iv)
	}

	calendar = Calendar{
		View:         availability.BuildCalendar(s.catalog.calendarRooms(), dates, intervals, s.catalog.Grid(), now),
		Reservations: fromRecords(records),
	}
	return
}

func calendarDates(query CalendarQuery, now time.Time) ([]time.Time, error) {
	start := strings.TrimSpace(query.StartDate)
	end := strings.TrimSpace(query.EndDate)
	if start != "" || end != "" {
		if start == "" {
			return nil, invalid("startDate", ErrMissingFields)
		}
		if end == "" {
			return nil, invalid("endDate", ErrMissingFields)
		}
		from, err := availability.ParseDate(start)
		if err != nil {
			return nil, invalid("startDate", err)
		}
		to, err := availability.ParseDate(end)
		if err != nil {
			return nil, invalid("endDate", err)
		}
		dates, err := availability.DateRange(from, to)
		if err != nil {
			return nil, invalid("endDate", err)
		}
		return dates, nil
	}

	anchor := availability.Today(now)
	if week := strings.TrimSpace(query.Week); week != "" {
		d, err := availability.ParseDate(week)
		if err != nil {
			return nil, invalid("week", err)
		}
		anchor = d
	}
	return availability.WeekDates(availability.WeekStart(anchor)), nil
}

// validateSlot runs the date and time checks and returns the parsed interval.
func (s *ReservationService) validateSlot(id, roomID, date, start, end string) (availability.Interval, error) {
	if err := s.policy.ValidateDate(date, s.now()); err != nil {
		return availability.Interval{}, invalid("date", err)
	}
	if err := s.policy.ValidateTimes(start, end); err != nil {
		field := "endTime"
		if _, parseErr := availability.ParseClock(start); parseErr != nil {
			field = "startTime"
		}
		return availability.Interval{}, invalid(field, err)
	}
	return availability.NewInterval(id, roomID, date, start, end)
}

// ensureAvailable re-reads the room's reservations for the candidate's date
// and reports ErrConflict when any of them overlaps.
func (s *ReservationService) ensureAvailable(ctx context.Context, logger *slog.Logger, candidate availability.Interval) error {
	records, err := s.store.ListFilteredReservations(ctx, persistence.ReservationFilter{
		RoomID: candidate.RoomID,
		Date:   availability.FormatDate(candidate.Date),
	})
	if err != nil {
		return s.storeError(ctx, logger, err)
	}

	existing := make([]availability.Interval, 0, len(records))
	for _, r := range records {
		iv, parseErr := availability.NewInterval(r.ID, r.RoomID, r.Date, r.StartTime, r.EndTime)
		if parseErr != nil {
			logger.WarnContext(ctx, "skipping unreadable reservation", "reservation_id", r.ID, "error", parseErr)
			continue
		}
		existing = append(existing, iv)
	}

	conflicts := availability.Conflicts(candidate, existing, candidate.ID)
	if len(conflicts) == 0 {
		return nil
	}
	ids := make([]string, len(conflicts))
	for i, c := range conflicts {
		ids[i] = c.ID
	}
	logger.DebugContext(ctx, "slot already reserved", "conflicting_ids", ids)
	return ErrConflict
}

// lockTarget loads the reservation, locks the slot it will occupy after merge
// and reloads it under the lock. It retries when a concurrent update moved the
// reservation to another slot in between.
func (s *ReservationService) lockTarget(ctx context.Context, id string, merge func(persistence.Reservation) persistence.Reservation) (persistence.Reservation, func(), error) {
	if merge == nil {
		merge = func(r persistence.Reservation) persistence.Reservation { return r }
	}
	logger := s.loggerWith(ctx, "lockTarget", "reservation_id", id)

	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return persistence.Reservation{}, nil, s.storeError(ctx, logger, err)
	}

	for attempt := 0; ; attempt++ {
		target := merge(current)
		key := lock.SlotKey(target.RoomID, target.Date)
		unlock, err := s.locker.Lock(ctx, key)
		if err != nil {
			return persistence.Reservation{}, nil, err
		}

		fresh, err := s.store.GetReservation(ctx, id)
		if err != nil {
			unlock()
			return persistence.Reservation{}, nil, s.storeError(ctx, logger, err)
		}
		merged := merge(fresh)
		if lock.SlotKey(merged.RoomID, merged.Date) == key {
			return merged, unlock, nil
		}
		unlock()
		if attempt+1 >= maxRelock {
			return persistence.Reservation{}, nil, ErrConflict
		}
		current = fresh
	}
}

// storeError maps a store failure to the service taxonomy. Causes other than
// a missing record or a cancelled context are logged and hidden.
func (s *ReservationService) storeError(ctx context.Context, logger *slog.Logger, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	logger.ErrorContext(ctx, "reservation store failed", "cause", err)
	return ErrStoreUnavailable
}

func trimInput(in ReservationInput) ReservationInput {
	return ReservationInput{
		RoomID:     strings.TrimSpace(in.RoomID),
		Date:       strings.TrimSpace(in.Date),
		StartTime:  strings.TrimSpace(in.StartTime),
		EndTime:    strings.TrimSpace(in.EndTime),
		ReservedBy: strings.TrimSpace(in.ReservedBy),
		Company:    strings.TrimSpace(in.Company),
	}
}

func trimPatch(p ReservationPatch) ReservationPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return ReservationPatch{
		RoomID:     trim(p.RoomID),
		Date:       trim(p.Date),
		StartTime:  trim(p.StartTime),
		EndTime:    trim(p.EndTime),
		ReservedBy: trim(p.ReservedBy),
		Company:    trim(p.Company),
	}
}

func requireInput(in ReservationInput) *ValidationError {
	vErr := &ValidationError{}
	fields := []struct {
		name  string
		value string
	}{
		{"roomId", in.RoomID},
		{"date", in.Date},
		{"startTime", in.StartTime},
		{"endTime", in.EndTime},
		{"reservedBy", in.ReservedBy},
		{"company", in.Company},
	}
	for _, f := range fields {
		if f.value == "" {
			vErr.add(f.name, ErrMissingFields)
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// requirePatch rejects fields that are present but blank.
func requirePatch(p ReservationPatch) *ValidationError {
	vErr := &ValidationError{}
	fields := []struct {
		name  string
		value *string
	}{
		{"roomId", p.RoomID},
		{"date", p.Date},
		{"startTime", p.StartTime},
		{"endTime", p.EndTime},
		{"reservedBy", p.ReservedBy},
		{"company", p.Company},
	}
	for _, f := range fields {
		if f.value != nil && *f.value == "" {
			vErr.add(f.name, ErrMissingFields)
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
