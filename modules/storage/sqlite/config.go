package sqlite

import "errors"

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "tidbits.db"
)

// Config holds the SQLite storage module configuration.
type Config struct {
	// Path is the database file. Defaults to {DataDir}/tidbits.db.
	Path string `yaml:"path"`

	// WAL toggles write-ahead logging. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is how long a locked database is retried, in
	// milliseconds. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		on := true
		c.WAL = &on
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return errors.New("sqlite: busy_timeout must not be negative")
	}
	return nil
}
