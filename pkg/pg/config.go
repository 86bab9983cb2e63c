package pg

import "time"

// Config controls the Postgres connection pool backing the send log and the
// user/device stores. Values come from the environment (see pkg/config).
type Config struct {
	ConnectionString string        `env:"PG_CONN_URL,required"`              // Postgres connection URL.
	MaxOpenConns     int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"` // Maximum open connections.
	MaxIdleConns     int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`  // Minimum idle connections kept warm.
	MaxConnIdleTime  time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime  time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"` // Connection attempts before giving up.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath  string `env:"PG_MIGRATIONS_PATH" envDefault:"migrations"`
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
