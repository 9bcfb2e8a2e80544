package application

import (
	"testing"

	"github.com/example/room-reservations/internal/availability"
)

func TestRoomCatalogDefaults(t *testing.T) {
	catalog := NewRoomCatalog(nil, nil, availability.Grid{})

	if got := len(catalog.Rooms()); got != 4 {
		t.Fatalf("expected 4 default rooms, got %d", got)
	}
	room, ok := catalog.Room("room-3")
	if !ok || room.Name != "Meeting Room 3" {
		t.Fatalf("expected room-3 lookup, got %+v (%v)", room, ok)
	}
	if !catalog.HasCompany("Company B") || catalog.HasCompany("Company C") {
		t.Fatalf("unexpected company membership for %v", catalog.Companies())
	}
	if catalog.Grid() != availability.DefaultGrid {
		t.Fatalf("expected default grid, got %+v", catalog.Grid())
	}
}

func TestRoomCatalogCustom(t *testing.T) {
	rooms := []Room{
		{ID: "a", Name: "Alpha"},
		{ID: "a", Name: "Duplicate"},
		{ID: "", Name: "Nameless"},
		{ID: "b", Name: "Beta"},
	}
	catalog := NewRoomCatalog(rooms, []string{}, availability.Grid{StartHour: 9, EndHour: 17, IntervalMinutes: 60})

	got := catalog.Rooms()
	if len(got) != 2 || got[0].Name != "Alpha" || got[1].ID != "b" {
		t.Fatalf("unexpected rooms %+v", got)
	}
	if !catalog.HasCompany("anyone") {
		t.Fatal("expected empty company list to accept any company")
	}

	got[0].Name = "mutated"
	if room, _ := catalog.Room("a"); room.Name != "Alpha" {
		t.Fatal("expected catalog to be immutable through Rooms")
	}
	if len(catalog.calendarRooms()) != 2 {
		t.Fatal("expected calendar rooms to mirror catalog")
	}
}
