package storage

import (
	"context"
	"time"

	"github.com/platinummonkey/eventbook/pkg/auth"
)

// UserAdmin extends auth.UserStore with the operations the admin API needs
type UserAdmin interface {
	auth.UserStore
	ListAdmins(ctx context.Context) ([]*auth.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// EventReader provides read access to events
type EventReader interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
}

// EventWriter provides write access to events
type EventWriter interface {
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// EventStore combines event reads and writes
type EventStore interface {
	EventReader
	EventWriter
}

// BookingStore persists bookings. One booking per (user, event).
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	ListUserBookings(ctx context.Context, userID string) ([]*Booking, error)
	// DeleteBooking cancels the user's booking for an event
	DeleteBooking(ctx context.Context, userID, eventID string) error
}

// HealthChecker reports backend health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Store is the full persistence surface used by the API
type Store interface {
	UserAdmin
	EventStore
	BookingStore
	HealthChecker
	Close() error
}

// Config for storage backend
type Config struct {
	Driver string `yaml:"driver"` // "memory", "postgres", "sqlite"

	// SQL config
	DatabaseURL string        `yaml:"database_url"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
	MaxIdleTime time.Duration `yaml:"max_idle_time"`
	AutoMigrate bool          `yaml:"auto_migrate"`

	// Redis config
	RedisURL        string `yaml:"redis_url"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	RedisMaxRetries int    `yaml:"redis_max_retries"`
	RedisPoolSize   int    `yaml:"redis_pool_size"`

	// Cache config
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	L1CacheSize int           `yaml:"l1_cache_size"` // Entries
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Driver:          "memory",
		MaxConns:        20,
		MinConns:        2,
		Timeout:         10 * time.Second,
		MaxLifetime:     30 * time.Minute,
		MaxIdleTime:     5 * time.Minute,
		AutoMigrate:     true,
		RedisDB:         0,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
		CacheTTL:        5 * time.Minute,
		L1CacheSize:     256,
	}
}
