package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/availability"
	"github.com/example/room-reservations/internal/persistence/memory"
	"github.com/example/room-reservations/internal/testfixtures"
)

const testAdminPassword = "correct horse battery staple"

type apiHarness struct {
	t       *testing.T
	factory *testfixtures.ServiceFactory
	store   *memory.Storage
	auth    *application.AuthService
	handler http.Handler
}

type harnessOption func(*RouterConfig)

func newAPIHarness(t *testing.T, opts ...harnessOption) *apiHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := testfixtures.NewServiceFactory()
	store := factory.NewMemoryStore()
	catalog := application.NewRoomCatalog(nil, nil, availability.DefaultGrid)
	reservations := factory.NewReservationService(testfixtures.ReservationServiceDeps{
		Store:   store,
		Catalog: catalog,
		Logger:  logger,
	})
	auth := factory.NewAuthService(testfixtures.AuthServiceDeps{
		PasswordHash: testfixtures.PasswordHash(t, testAdminPassword),
		Logger:       logger,
	})

	cfg := RouterConfig{
		Reservations: NewReservationHandler(reservations, logger),
		Calendar:     NewCalendarHandler(reservations, logger),
		Rooms:        NewRoomHandler(catalog, logger),
		Auth:         NewAuthHandler(auth, true, logger),
		RequireAdmin: RequireSession(auth, logger),
		Middleware:   []func(http.Handler) http.Handler{RequestLogger(logger)},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &apiHarness{t: t, factory: factory, store: store, auth: auth, handler: NewRouter(cfg)}
}

// bind returns a copy of the harness reporting failures to t.
func (h *apiHarness) bind(t *testing.T) *apiHarness {
	c := *h
	c.t = t
	return &c
}

type apiEnvelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func (h *apiHarness) do(method, target string, body any, mutate ...func(*http.Request)) (*httptest.ResponseRecorder, apiEnvelope) {
	h.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			h.t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, fn := range mutate {
		fn(req)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var env apiEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func (h *apiHarness) login() string {
	h.t.Helper()
	session, err := h.auth.Login(h.t.Context(), testAdminPassword)
	if err != nil {
		h.t.Fatalf("login failed: %v", err)
	}
	return session.Token
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(c)
	}
}

func reservationBody(f testfixtures.ReservationFixture) map[string]string {
	return map[string]string{
		"roomId":     f.RoomID,
		"date":       f.Date,
		"startTime":  f.StartTime,
		"endTime":    f.EndTime,
		"reservedBy": f.ReservedBy,
		"company":    f.Company,
	}
}

func decodeData[T any](t *testing.T, env apiEnvelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
	return out
}

func TestCreateReservation(t *testing.T) {
	h := newAPIHarness(t)
	fixture := testfixtures.NewReservationFixture()

	rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(fixture))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.Success || env.Message != "Reservation created successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	created := decodeData[reservationDTO](t, env)
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.RoomName != "Meeting Room 1" {
		t.Fatalf("expected room name from catalog, got %q", created.RoomName)
	}
	if created.CreatedAt == "" {
		t.Fatal("expected createdAt")
	}
}

func TestCreateReservationRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
		field   string
	}{
		{name: "malformed json", body: "{", message: "Invalid request body"},
		{name: "missing fields", body: map[string]string{"roomId": "room-1"}, message: "Missing required fields", field: "date"},
		{name: "reversed window", body: reservationBody(testfixtures.NewReservationFixture(testfixtures.WithWindow("11:00", "10:00"))), message: "End time must be after start time", field: "endTime"},
		{name: "too short", body: reservationBody(testfixtures.NewReservationFixture(testfixtures.WithWindow("10:00", "10:10"))), message: "Reservation must be at least 15 minutes", field: "endTime"},
		{name: "past date", body: reservationBody(testfixtures.NewReservationFixture(testfixtures.WithDate("2025-06-01"))), message: "Cannot reserve in the past", field: "date"},
		{name: "bad time", body: reservationBody(testfixtures.NewReservationFixture(testfixtures.WithWindow("9:00", "10:00"))), message: "Invalid time format", field: "startTime"},
		{name: "unknown room", body: reservationBody(testfixtures.NewReservationFixture(testfixtures.WithRoom("room-9", ""))), message: "Invalid room", field: "roomId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAPIHarness(t)
			rec, env := h.do(http.MethodPost, "/api/reservations", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if env.Success {
				t.Fatal("expected success=false")
			}
			if env.Error != tt.message {
				t.Fatalf("expected error %q, got %q", tt.message, env.Error)
			}
			if tt.field != "" {
				if _, ok := env.Fields[tt.field]; !ok {
					t.Fatalf("expected field error for %s, got %v", tt.field, env.Fields)
				}
			}
		})
	}
}

func TestCreateReservationConflict(t *testing.T) {
	h := newAPIHarness(t)
	first := testfixtures.NewReservationFixture(testfixtures.WithWindow("10:00", "11:00"))
	overlapping := testfixtures.NewReservationFixture(testfixtures.WithWindow("10:30", "11:30"))
	touching := testfixtures.NewReservationFixture(testfixtures.WithWindow("11:00", "12:00"))

	if rec, _ := h.do(http.MethodPost, "/api/reservations", reservationBody(first)); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(overlapping))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if env.Error != msgConflict {
		t.Fatalf("expected conflict message, got %q", env.Error)
	}

	if rec, _ := h.do(http.MethodPost, "/api/reservations", reservationBody(touching)); rec.Code != http.StatusCreated {
		t.Fatalf("expected touching reservation to be accepted, got %d", rec.Code)
	}
}

func TestListAndGetReservations(t *testing.T) {
	h := newAPIHarness(t)
	later := testfixtures.NewReservationFixture(testfixtures.WithWindow("14:00", "15:00"))
	earlier := testfixtures.NewReservationFixture(testfixtures.WithWindow("09:00", "10:00"), testfixtures.WithCompany("Company B"))

	var ids []string
	for _, f := range []testfixtures.ReservationFixture{later, earlier} {
		rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(f))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		ids = append(ids, decodeData[reservationDTO](t, env).ID)
	}

	rec, env := h.do(http.MethodGet, "/api/reservations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := decodeData[[]reservationDTO](t, env)
	if len(list) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(list))
	}
	if list[0].StartTime != "09:00" || list[1].StartTime != "14:00" {
		t.Fatalf("expected reservations ordered by start time, got %s then %s", list[0].StartTime, list[1].StartTime)
	}

	_, env = h.do(http.MethodGet, "/api/reservations?company=company+b", nil)
	filtered := decodeData[[]reservationDTO](t, env)
	if len(filtered) != 1 || filtered[0].Company != "Company B" {
		t.Fatalf("expected company filter to match one reservation, got %+v", filtered)
	}

	_, env = h.do(http.MethodGet, "/api/reservations?roomId=room-4", nil)
	if empty := decodeData[[]reservationDTO](t, env); len(empty) != 0 {
		t.Fatalf("expected no reservations for room-4, got %d", len(empty))
	}

	rec, env = h.do(http.MethodGet, "/api/reservations/"+ids[0], nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeData[reservationDTO](t, env); got.ID != ids[0] {
		t.Fatalf("expected reservation %s, got %s", ids[0], got.ID)
	}

	rec, env = h.do(http.MethodGet, "/api/reservations/missing", nil)
	if rec.Code != http.StatusNotFound || env.Error != msgNotFound {
		t.Fatalf("expected 404 %q, got %d %q", msgNotFound, rec.Code, env.Error)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	h := newAPIHarness(t)
	rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(testfixtures.NewReservationFixture()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	id := decodeData[reservationDTO](t, env).ID

	tests := []struct {
		name   string
		method string
		target string
		mutate []func(*http.Request)
		error  string
	}{
		{name: "update without token", method: http.MethodPut, target: "/api/reservations/" + id, error: "Authentication required"},
		{name: "delete without token", method: http.MethodDelete, target: "/api/reservations/" + id, error: "Authentication required"},
		{name: "session without token", method: http.MethodGet, target: "/api/admin/session", error: "Authentication required"},
		{name: "garbage bearer", method: http.MethodDelete, target: "/api/reservations/" + id, mutate: []func(*http.Request){bearer("garbage")}, error: msgSessionInvalid},
		{name: "garbage cookie", method: http.MethodGet, target: "/api/admin/session", mutate: []func(*http.Request){withCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})}, error: msgSessionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := h.bind(t).do(tt.method, tt.target, map[string]string{"reservedBy": "Mallory"}, tt.mutate...)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if env.Error != tt.error {
				t.Fatalf("expected error %q, got %q", tt.error, env.Error)
			}
		})
	}

	if _, err := h.store.GetReservation(t.Context(), id); err != nil {
		t.Fatalf("expected reservation to survive unauthenticated requests: %v", err)
	}
}

func TestUpdateAndDeleteReservation(t *testing.T) {
	h := newAPIHarness(t)
	token := h.login()

	rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(testfixtures.NewReservationFixture()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	created := decodeData[reservationDTO](t, env)

	rec, env = h.do(http.MethodPut, "/api/reservations/"+created.ID, map[string]string{
		"roomId":    "room-2",
		"startTime": "13:00",
		"endTime":   "14:30",
	}, bearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Message != "Reservation updated successfully" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	updated := decodeData[reservationDTO](t, env)
	if updated.RoomID != "room-2" || updated.RoomName != "Meeting Room 2" {
		t.Fatalf("expected move to room-2, got %s (%s)", updated.RoomID, updated.RoomName)
	}
	if updated.StartTime != "13:00" || updated.EndTime != "14:30" {
		t.Fatalf("expected new window, got %s-%s", updated.StartTime, updated.EndTime)
	}
	if updated.ReservedBy != created.ReservedBy || updated.CreatedAt != created.CreatedAt {
		t.Fatalf("expected untouched fields to be preserved, got %+v", updated)
	}

	rec, env = h.do(http.MethodPut, "/api/reservations/"+created.ID, map[string]string{"endTime": "12:00"}, bearer(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for merged window, got %d", rec.Code)
	}
	if env.Error != "End time must be after start time" {
		t.Fatalf("unexpected error %q", env.Error)
	}

	rec, env = h.do(http.MethodDelete, "/api/reservations/"+created.ID, nil, bearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.Message != "Reservation deleted successfully" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	rec, _ = h.do(http.MethodDelete, "/api/reservations/"+created.ID, nil, bearer(token))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUpdateReservationConflict(t *testing.T) {
	h := newAPIHarness(t)
	token := h.login()

	var ids []string
	for _, window := range [][2]string{{"10:00", "11:00"}, {"12:00", "13:00"}} {
		rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(testfixtures.NewReservationFixture(testfixtures.WithWindow(window[0], window[1]))))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		ids = append(ids, decodeData[reservationDTO](t, env).ID)
	}

	rec, env := h.do(http.MethodPut, "/api/reservations/"+ids[1], map[string]string{"startTime": "10:30"}, bearer(token))
	if rec.Code != http.StatusConflict || env.Error != msgConflict {
		t.Fatalf("expected 409 conflict, got %d %q", rec.Code, env.Error)
	}

	rec, _ = h.do(http.MethodPut, "/api/reservations/"+ids[0], map[string]string{"endTime": "11:30"}, bearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected resize within own slot to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginLogoutSession(t *testing.T) {
	h := newAPIHarness(t)

	rec, env := h.do(http.MethodPost, "/api/admin/login", map[string]string{"password": "wrong"})
	if rec.Code != http.StatusUnauthorized || env.Error != "Invalid password" {
		t.Fatalf("expected 401 Invalid password, got %d %q", rec.Code, env.Error)
	}

	rec, env = h.do(http.MethodPost, "/api/admin/login", map[string]string{"password": ""})
	if rec.Code != http.StatusBadRequest || env.Error != "Password is required" {
		t.Fatalf("expected 400 Password is required, got %d %q", rec.Code, env.Error)
	}

	rec, env = h.do(http.MethodPost, "/api/admin/login", map[string]string{"password": testAdminPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	expectedExpiry := testfixtures.ReferenceTime().Add(application.DefaultSessionTTL)
	if !cookie.Expires.Equal(expectedExpiry) {
		t.Fatalf("expected cookie to expire at %s, got %s", expectedExpiry, cookie.Expires)
	}
	session := decodeData[sessionDTO](t, env)
	if session.Token != cookie.Value || !session.Authenticated {
		t.Fatalf("unexpected session body: %+v", session)
	}

	rec, env = h.do(http.MethodGet, "/api/admin/session", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if current := decodeData[sessionDTO](t, env); current.Token != "" || current.ExpiresAt != session.ExpiresAt {
		t.Fatalf("unexpected session view: %+v", current)
	}

	rec, _ = h.do(http.MethodPost, "/api/admin/logout", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected logout to clear the session cookie")
	}

	rec, env = h.do(http.MethodGet, "/api/admin/session", nil, withCookie(cookie))
	if rec.Code != http.StatusUnauthorized || env.Error != msgSessionInvalid {
		t.Fatalf("expected revoked session to be rejected, got %d %q", rec.Code, env.Error)
	}
}

func TestLogoutWithoutSessionSucceeds(t *testing.T) {
	h := newAPIHarness(t)
	rec, env := h.do(http.MethodPost, "/api/admin/logout", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	h := newAPIHarness(t)
	token := h.login()
	h.factory.Clock.Advance(application.DefaultSessionTTL + time.Second)

	rec, env := h.do(http.MethodGet, "/api/admin/session", nil, bearer(token))
	if rec.Code != http.StatusUnauthorized || env.Error != msgSessionExpired {
		t.Fatalf("expected expired session, got %d %q", rec.Code, env.Error)
	}
}

func TestLoginRateLimit(t *testing.T) {
	h := newAPIHarness(t, func(cfg *RouterConfig) {
		cfg.LoginLimiter = RateLimit(1, 1, nil)
	})

	rec, _ := h.do(http.MethodPost, "/api/admin/login", map[string]string{"password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected first attempt to reach the handler, got %d", rec.Code)
	}

	rec, env := h.do(http.MethodPost, "/api/admin/login", map[string]string{"password": testAdminPassword})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if env.Error != errTooManyRequests.Error() {
		t.Fatalf("unexpected error %q", env.Error)
	}
}

func TestRoomsEndpoint(t *testing.T) {
	h := newAPIHarness(t)

	rec, env := h.do(http.MethodGet, "/api/rooms", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeData[roomsResponse](t, env)
	if len(body.Rooms) != 4 {
		t.Fatalf("expected 4 rooms, got %d", len(body.Rooms))
	}
	if body.Rooms[0].ID != "room-1" || body.Rooms[0].Name != "Meeting Room 1" || body.Rooms[0].Description != "Main conference room" {
		t.Fatalf("unexpected first room: %+v", body.Rooms[0])
	}
	if len(body.Companies) != 2 || body.Companies[0] != "Company A" {
		t.Fatalf("unexpected companies: %v", body.Companies)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	h := newAPIHarness(t)
	fixture := testfixtures.NewReservationFixture(testfixtures.WithWindow("10:00", "11:00"))
	rec, env := h.do(http.MethodPost, "/api/reservations", reservationBody(fixture))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	id := decodeData[reservationDTO](t, env).ID

	rec, env = h.do(http.MethodGet, "/api/calendar", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	calendar := decodeData[calendarDTO](t, env)
	if len(calendar.Dates) != 7 || calendar.Dates[0] != testfixtures.ReferenceDate() {
		t.Fatalf("expected the reference week, got %v", calendar.Dates)
	}
	if len(calendar.TimeSlots) == 0 || calendar.TimeSlots[0] != "08:00" {
		t.Fatalf("unexpected time slots %v", calendar.TimeSlots)
	}
	if calendar.CurrentSlot != "09:00" {
		t.Fatalf("expected current slot 09:00, got %q", calendar.CurrentSlot)
	}
	if len(calendar.Rooms) != 4 || len(calendar.Days) != 7 {
		t.Fatalf("expected 4 rooms over 7 days, got %d rooms %d days", len(calendar.Rooms), len(calendar.Days))
	}
	if !calendar.Days[0].Today || calendar.Days[1].Today {
		t.Fatal("expected only the first day to be today")
	}
	if len(calendar.Reservations) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(calendar.Reservations))
	}

	day := calendar.Days[1]
	if day.Date != fixture.Date {
		t.Fatalf("expected second day %s, got %s", fixture.Date, day.Date)
	}
	booked := map[string]string{}
	for _, slot := range day.Rooms[0].Slots {
		if !slot.Available {
			booked[slot.Time] = slot.ReservationID
		}
	}
	if len(booked) != 2 || booked["10:00"] != id || booked["10:30"] != id {
		t.Fatalf("expected 10:00 and 10:30 to be booked by %s, got %v", id, booked)
	}

	rec, env = h.do(http.MethodGet, "/api/calendar?startDate=2025-06-10&endDate=2025-06-05", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for reversed range, got %d", rec.Code)
	}
	if env.Success {
		t.Fatal("expected success=false")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newAPIHarness(t)

	tests := []struct {
		method string
		target string
		allow  string
	}{
		{http.MethodDelete, "/api/reservations", "GET, POST"},
		{http.MethodPost, "/api/reservations/abc", "GET, PUT, DELETE"},
		{http.MethodGet, "/api/admin/login", "POST"},
		{http.MethodPost, "/api/rooms", "GET"},
		{http.MethodPut, "/api/calendar", "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec, _ := h.bind(t).do(tt.method, tt.target, nil)
			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", rec.Code)
			}
			if got := rec.Header().Get("Allow"); got != tt.allow {
				t.Fatalf("expected Allow %q, got %q", tt.allow, got)
			}
		})
	}
}

func TestRouterWithoutAdminGuardOmitsAdminRoutes(t *testing.T) {
	h := newAPIHarness(t, func(cfg *RouterConfig) {
		cfg.RequireAdmin = nil
	})

	rec, _ := h.do(http.MethodDelete, "/api/reservations/abc", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 without admin guard, got %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodGet {
		t.Fatalf("expected Allow GET, got %q", got)
	}

	rec, _ = h.do(http.MethodGet, "/api/admin/session", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without admin guard, got %d", rec.Code)
	}
}

func TestNilHandlersRespondWithServerError(t *testing.T) {
	var reservations *ReservationHandler
	var calendar *CalendarHandler
	var auth *AuthHandler

	for name, fn := range map[string]http.HandlerFunc{
		"list":     reservations.List,
		"create":   reservations.Create,
		"calendar": calendar.Get,
		"login":    auth.Login,
	} {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", name, rec.Code)
		}
	}
}
