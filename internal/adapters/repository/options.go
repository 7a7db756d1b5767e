package repository

import "time"

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*sqliteConfig)

type sqliteConfig struct {
	busyTimeout time.Duration
	synchronous string
}

func defaultSQLiteConfig() sqliteConfig {
	return sqliteConfig{busyTimeout: 5 * time.Second, synchronous: "NORMAL"}
}

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(d time.Duration) SQLiteOption {
	return func(c *sqliteConfig) {
		if d > 0 {
			c.busyTimeout = d
		}
	}
}

// WithSynchronous sets the synchronous pragma (OFF, NORMAL, FULL or EXTRA).
func WithSynchronous(mode string) SQLiteOption {
	return func(c *sqliteConfig) {
		switch mode {
		case "OFF", "NORMAL", "FULL", "EXTRA":
			c.synchronous = mode
		}
	}
}
