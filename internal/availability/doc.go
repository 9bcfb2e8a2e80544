// Package availability decides whether a proposed reservation is valid and
// whether it collides with existing ones, and projects reservations onto the
// working-hours grid for calendar display.
//
// Dates and wall-clock times arrive as fixed-width "YYYY-MM-DD" and "HH:MM"
// strings. They are parsed into comparable values at the boundary and all
// ordering and overlap arithmetic runs on the parsed form. The package performs
// no I/O and holds no state.
package availability
