// Package http provides HTTP handlers and middleware for the reservation API.
//
// Every response is a JSON envelope: {"success":true,"data":...,"message":...}
// on success and {"success":false,"error":...} on failure.
//
// The router exposes the following endpoints:
//   - GET /api/rooms: the configured rooms and accepted companies.
//   - GET /api/reservations: reservations filtered by the roomId, date, company,
//     startDate and endDate query parameters, ordered by date and start time.
//   - POST /api/reservations: creates a reservation from the `reservationRequest`
//     payload defined in reservation_handler.go. Responds 201.
//   - GET /api/reservations/{id}: a single reservation.
//   - PUT /api/reservations/{id}, DELETE /api/reservations/{id}: administrator
//     only; PUT accepts any subset of the reservation fields.
//   - GET /api/calendar: the slot grid of every room for the week containing
//     ?week=YYYY-MM-DD (default: the current week) or for
//     ?startDate=&endDate=.
//   - POST /api/admin/login: exchanges {"password"} for an admin session held in
//     the `admin_session` cookie. Rate limited per client address.
//   - POST /api/admin/logout: revokes the current session and clears the cookie.
//   - GET /api/admin/session: reports the current session.
//
// Administrator routes accept the session token from the `admin_session`
// cookie or an `Authorization: Bearer` header.
package http
