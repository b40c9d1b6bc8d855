package config

import "time"

// Config holds runtime settings for the TaskMarket data layer.
//
// Fields:
//   - LocalDSN: SQLite data source for the local store.
//   - RemoteURL / RemoteNamespace / RemoteDatabase: the SurrealDB endpoint
//     and the namespace/database pair to use. An empty RemoteURL runs the
//     application local-only.
//   - RemoteUser / RemotePass: SurrealDB credentials.
//   - OnlineCheckInterval: how often an offline session re-probes the remote.
//   - SyncInterval: how often local-only records are pushed up.
//   - OutboxInterval: how often the outbox drain runs.
//   - OutboxMaxRetries: retry cap for one remote call inside a drain pass.
type Config struct {
	LocalDSN string

	RemoteURL       string
	RemoteNamespace string
	RemoteDatabase  string
	RemoteUser      string
	RemotePass      string

	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	OutboxInterval      time.Duration
	OutboxMaxRetries    uint64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDSN = "taskmarket.db"
	c.RemoteURL = "ws://127.0.0.1:8000"
	c.RemoteNamespace = "taskmarket"
	c.RemoteDatabase = "taskmarket"
	c.RemoteUser = "root"
	c.RemotePass = "root"
	c.OnlineCheckInterval = 15 * time.Second
	c.SyncInterval = 30 * time.Second
	c.OutboxInterval = 3 * time.Second
	c.OutboxMaxRetries = 3
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
