package testfixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

func TestServiceFactoryReservationServiceUsesClockAndIDs(t *testing.T) {
	factory := NewServiceFactory()
	svc := factory.NewReservationService(ReservationServiceDeps{})

	created, err := svc.Create(context.Background(), NewReservationFixture().Input())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "reservation-1" {
		t.Fatalf("expected deterministic id, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(ReferenceTime()) {
		t.Fatalf("expected reference time, got %v", created.CreatedAt)
	}
}

func TestServiceFactoryAuthService(t *testing.T) {
	factory := NewServiceFactory()
	svc := factory.NewAuthService(AuthServiceDeps{PasswordHash: PasswordHash(t, "open-sesame")})

	session, err := svc.Login(context.Background(), "open-sesame")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !session.IssuedAt.Equal(ReferenceTime()) {
		t.Fatalf("expected session issued at reference time, got %v", session.IssuedAt)
	}
	if _, err := svc.Login(context.Background(), "wrong"); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestNewSQLiteStoreIsMigrated(t *testing.T) {
	store := NewSQLiteStore(t)
	fixture := NewReservationFixture()

	created, err := store.CreateReservation(context.Background(), fixture.Draft())
	if err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}
	got, err := store.GetReservation(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if got.RoomID != fixture.RoomID || got.StartTime != fixture.StartTime {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestServiceFactoryReservationServiceOnSQLite(t *testing.T) {
	factory := NewServiceFactory()
	store := NewSQLiteStore(t,
		persistence.WithIDGenerator(factory.IDGenerator.NextFunc()),
		persistence.WithClock(factory.Clock.NowFunc()),
	)
	svc := factory.NewReservationService(ReservationServiceDeps{Store: store})

	fixture := NewReservationFixture()
	created, err := svc.Create(context.Background(), fixture.Input())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Create(context.Background(), NewReservationFixture(WithWindow("10:30", "11:30")).Input()); !errors.Is(err, application.ErrConflict) {
		t.Fatalf("expected conflict against the stored reservation, got %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RoomName != fixture.RoomName || got.StartTime != fixture.StartTime {
		t.Fatalf("unexpected reservation read back: %+v", got)
	}
}
