package memory_test

import (
	"testing"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/memory"
	"github.com/example/room-reservations/internal/persistence/storetest"
)

func TestStorageContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...persistence.Option) persistence.ReservationRepository {
		return memory.Open(opts...)
	})
}
