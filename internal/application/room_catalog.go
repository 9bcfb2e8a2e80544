package application

import (
	"slices"

	"github.com/example/room-reservations/internal/availability"
)

// DefaultRooms are the meeting rooms offered when no catalog file is configured.
var DefaultRooms = []Room{
	{ID: "room-1", Name: "Meeting Room 1", Description: "Main conference room"},
	{ID: "room-2", Name: "Meeting Room 2", Description: "Small meeting room"},
	{ID: "room-3", Name: "Meeting Room 3", Description: "Team collaboration space"},
	{ID: "room-4", Name: "Meeting Room 4", Description: "Executive meeting room"},
}

// DefaultCompanies are the organisations a reservation may be made for.
var DefaultCompanies = []string{"Company A", "Company B"}

// RoomCatalog is the fixed set of rooms and companies. It is immutable after
// construction.
type RoomCatalog struct {
	rooms     []Room
	byID      map[string]Room
	companies []string
	grid      availability.Grid
}

// NewRoomCatalog copies rooms, companies and the calendar grid into a catalog.
// Nil slices and a zero grid fall back to the defaults; a later room with a
// repeated id is ignored.
func NewRoomCatalog(rooms []Room, companies []string, grid availability.Grid) *RoomCatalog {
	if rooms == nil {
		rooms = DefaultRooms
	}
	if companies == nil {
		companies = DefaultCompanies
	}
	if grid == (availability.Grid{}) {
		grid = availability.DefaultGrid
	}
	c := &RoomCatalog{
		rooms:     make([]Room, 0, len(rooms)),
		byID:      make(map[string]Room, len(rooms)),
		companies: slices.Clone(companies),
		grid:      grid,
	}
	for _, room := range rooms {
		if _, dup := c.byID[room.ID]; dup || room.ID == "" {
			continue
		}
		c.byID[room.ID] = room
		c.rooms = append(c.rooms, room)
	}
	return c
}

// Rooms returns the rooms in catalog order.
func (c *RoomCatalog) Rooms() []Room {
	if c == nil {
		return nil
	}
	return slices.Clone(c.rooms)
}

// Room looks a room up by id.
func (c *RoomCatalog) Room(id string) (Room, bool) {
	if c == nil {
		return Room{}, false
	}
	room, ok := c.byID[id]
	return room, ok
}

// Companies returns the accepted company names.
func (c *RoomCatalog) Companies() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.companies)
}

// HasCompany reports whether name is an accepted company. An empty company
// list accepts any name.
func (c *RoomCatalog) HasCompany(name string) bool {
	if c == nil || len(c.companies) == 0 {
		return true
	}
	return slices.Contains(c.companies, name)
}

// Grid returns the working hours grid used by the calendar.
func (c *RoomCatalog) Grid() availability.Grid {
	if c == nil {
		return availability.DefaultGrid
	}
	return c.grid
}

func (c *RoomCatalog) calendarRooms() []availability.Room {
	out := make([]availability.Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, availability.Room{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out
}
