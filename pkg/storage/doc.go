// Package storage defines the persistence interfaces for eventbook and the
// records they carry.
//
// # Interfaces
//
//   - auth.UserStore / UserAdmin: credential store (users)
//   - EventReader / EventWriter: events
//   - BookingStore: bookings, unique per (user, event)
//   - HealthChecker: readiness probes
//
// These compose into Store, which every backend implements.
//
// # Backends
//
//   - memory: maps guarded by a RWMutex, for development and tests
//   - sqlstore: database/sql over PostgreSQL (lib/pq) or SQLite (go-sqlite3)
//   - cache: Redis + in-process LRU decorator for EventReader
//
// Email uniqueness is mandatory in every backend: concurrent first-time
// federated logins for the same address rely on it to avoid duplicate rows.
package storage
