// Package config provides application configuration management.
//
// # Overview
//
// Defaults are applied first, then an optional YAML file named by
// EVENTBOOK_CONFIG_FILE, then environment variables. The result is validated
// before it is returned.
//
// # Configuration Structure
//
// Server settings:
//
//	EVENTBOOK_HOST="0.0.0.0"
//	PORT="3000"
//	EVENTBOOK_HEALTH_PORT="9090"
//	EVENTBOOK_READ_TIMEOUT="15s"
//	EVENTBOOK_CORS_ORIGINS="https://app.example.com"
//
// Auth settings:
//
//	JWT_SECRET="..."                    # at least 32 bytes unless EVENTBOOK_ENV=development
//	EVENTBOOK_TOKEN_TRANSPORT="cookie"  # cookie, body
//	COOKIE_DOMAIN=".example.com"
//	COOKIE_SECURE="true"
//	COOKIE_SAMESITE="lax"               # lax, strict, none
//	FRONTEND_URL="https://app.example.com"
//	EVENTBOOK_FEDERATED_MERGE="merge"   # merge, reject
//	GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET / GOOGLE_REDIRECT_URL
//
// Storage settings:
//
//	EVENTBOOK_STORAGE_DRIVER="postgres"  # memory, postgres, sqlite
//	DATABASE_URL="postgres://localhost/eventbook"
//	EVENTBOOK_REDIS_URL="redis://localhost:6379"
//	EVENTBOOK_CACHE_TTL="5m"
//
// Observability settings:
//
//	EVENTBOOK_LOG_LEVEL="info"  # debug, info, warn, error
//	EVENTBOOK_LOG_FORMAT="json" # json, text
//	EVENTBOOK_METRICS_ENABLED="true"
//	EVENTBOOK_OTEL_ENABLED="true"
//	EVENTBOOK_OTEL_ENDPOINT="otel-collector:4317"
//
// The same settings can be given as YAML:
//
//	server:
//	  port: "3000"
//	auth:
//	  jwt_secret: ...
//	storage:
//	  driver: sqlite
//	  database_url: file:eventbook.db
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/session: Uses cookie settings
//   - pkg/observability: Uses observability configuration
package config
