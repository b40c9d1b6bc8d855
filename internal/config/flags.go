package config

import (
	"flag"
	"os"
	"time"

	"taskmarket/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   SQLite data source for the local store
//	-r string   SurrealDB endpoint URL (empty = local-only)
//	-n string   SurrealDB namespace
//	-b string   SurrealDB database
//	-u string   SurrealDB username
//	-p string   SurrealDB password
//	-i int      online check interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-n", "-b", "-u", "-p", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDSN, "d", cfg.LocalDSN, "SQLite data source for the local store")
	fs.StringVar(&cfg.RemoteURL, "r", cfg.RemoteURL, "SurrealDB endpoint URL")
	fs.StringVar(&cfg.RemoteNamespace, "n", cfg.RemoteNamespace, "SurrealDB namespace")
	fs.StringVar(&cfg.RemoteDatabase, "b", cfg.RemoteDatabase, "SurrealDB database")
	fs.StringVar(&cfg.RemoteUser, "u", cfg.RemoteUser, "SurrealDB username")
	fs.StringVar(&cfg.RemotePass, "p", cfg.RemotePass, "SurrealDB password")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
