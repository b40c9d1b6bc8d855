package config

import (
	"encoding/json"
	"os"
	"time"

	"taskmarket/internal/flagx"
	"taskmarket/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so JSON can specify them either as strings like "3s" or as
// integer nanoseconds.
type JsonConfig struct {
	LocalDSN            string         `json:"local_dsn"`
	RemoteURL           string         `json:"remote_url"`
	RemoteNamespace     string         `json:"remote_namespace"`
	RemoteDatabase      string         `json:"remote_database"`
	RemoteUser          string         `json:"remote_user"`
	RemotePass          string         `json:"remote_pass"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	OutboxInterval      timex.Duration `json:"outbox_interval"`
	OutboxMaxRetries    uint64         `json:"outbox_max_retries"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. Missing file selection means no JSON layer; read or
// unmarshal errors panic, startup configuration has no one to report to yet.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.LocalDSN != "" {
		cfg.LocalDSN = jc.LocalDSN
	}
	if jc.RemoteURL != "" {
		cfg.RemoteURL = jc.RemoteURL
	}
	if jc.RemoteNamespace != "" {
		cfg.RemoteNamespace = jc.RemoteNamespace
	}
	if jc.RemoteDatabase != "" {
		cfg.RemoteDatabase = jc.RemoteDatabase
	}
	if jc.RemoteUser != "" {
		cfg.RemoteUser = jc.RemoteUser
	}
	if jc.RemotePass != "" {
		cfg.RemotePass = jc.RemotePass
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.OutboxInterval.Duration != 0 {
		cfg.OutboxInterval = time.Duration(jc.OutboxInterval.Duration)
	}
	if jc.OutboxMaxRetries != 0 {
		cfg.OutboxMaxRetries = jc.OutboxMaxRetries
	}
}
