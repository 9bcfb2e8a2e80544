package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/memory"
)

// ServiceFactory wires stores and services to one settable clock and one
// identifier sequence, so reservation IDs and timestamps are predictable.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption customises a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory starts the clock at ReferenceTime and numbers reservations
// "reservation-1", "reservation-2" and so on.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("reservation")
	}
	return factory
}

// WithClock shares clock with the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

// WithIDGenerator shares generator with the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.IDGenerator = generator }
}

// NewMemoryStore returns an in-memory store sharing the factory's clock and
// identifier sequence.
func (f *ServiceFactory) NewMemoryStore() *memory.Storage {
	return memory.Open(
		persistence.WithIDGenerator(f.IDGenerator.NextFunc()),
		persistence.WithClock(f.Clock.NowFunc()),
	)
}

// ReservationServiceDeps captures dependencies for constructing a reservation service.
type ReservationServiceDeps struct {
	Store   application.ReservationStore
	Locker  application.Locker
	Catalog *application.RoomCatalog
	Now     func() time.Time
	Logger  *slog.Logger
}

// NewReservationService builds a reservation service. A nil store becomes a
// fresh in-memory store.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	store := deps.Store
	if store == nil {
		store = f.NewMemoryStore()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewReservationServiceWithLogger(store, deps.Locker, deps.Catalog, now, deps.Logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	PasswordHash   string
	Secret         []byte
	PasswordVerify application.PasswordVerifier
	IDGenerator    func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	secret := deps.Secret
	if secret == nil {
		secret = []byte("test-session-secret")
	}
	return application.NewAuthServiceWithLogger(
		deps.PasswordHash,
		secret,
		deps.PasswordVerify,
		idGen,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
