// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm/logger"

	"github.com/munin-mcp/munin/internal/config"
	"github.com/munin-mcp/munin/internal/memory"
	"github.com/munin-mcp/munin/internal/persistence"
	"github.com/munin-mcp/munin/internal/server"
	"github.com/munin-mcp/munin/pkg/scheduler"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version string

func main() {
	// CRITICAL: MCP servers must ONLY output JSON-RPC to stdout
	// Redirect all logging to stderr
	log.SetOutput(os.Stderr)

	// Define command-line flags
	configPath := flag.String("config", "", "Path to config file")
	dbType := flag.String("db-type", "", "Database type (sqlite or postgres)")
	dbPath := flag.String("db-path", "", "Database path (for sqlite)")
	dbDSN := flag.String("db-dsn", "", "Database DSN (for postgres)")
	persist := flag.Bool("persist", false, "Enable snapshot persistence even if disabled in config")
	consolidateOnce := flag.Bool("consolidate", false, "Run one consolidation pass against the snapshot and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Munin MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Server Mode:\n")
		fmt.Fprintf(os.Stderr, "  %s                 Start MCP server (stdio)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --persist       Start MCP server with snapshot persistence\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMaintenance:\n")
		fmt.Fprintf(os.Stderr, "  %s --consolidate   Consolidate the persisted snapshot offline and exit\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MUNIN_DB_TYPE      Database type (sqlite or postgres)\n")
		fmt.Fprintf(os.Stderr, "  MUNIN_DB_PATH      SQLite database path\n")
		fmt.Fprintf(os.Stderr, "  MUNIN_DB_DSN       PostgreSQL connection string\n")
	}

	flag.Parse()

	log.Println("Starting Munin MCP Server...")

	// Load configuration
	var cfg *config.Config
	var err error

	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config from %s: %v", *configPath, err)
			log.Println("Using defaults")
			cfg = config.DefaultConfig()
		} else {
			log.Printf("Loaded configuration from %s", *configPath)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			log.Printf("Warning: Failed to load default config: %v", err)
			log.Println("Using built-in defaults")
			cfg = config.DefaultConfig()
		} else {
			log.Printf("Loaded configuration from ~/.munin/configs/config.json")
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Apply CLI flag overrides (highest priority)
	applyCLIOverrides(cfg, *dbType, *dbPath, *dbDSN, *persist)

	log.Printf("Configuration: max_memories=%d retention=%s persistence=%v",
		cfg.Memory.MaxMemories, cfg.Memory.RetentionPolicy, cfg.Database.Enabled)

	// Build the store
	store := memory.NewStore(memory.Options{
		MaxMemories:     cfg.Memory.MaxMemories,
		RetentionPolicy: retentionPolicy(cfg),
		CacheSize:       cfg.Cache.Size,
		CacheTTL:        time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	})

	// Open snapshot persistence and rehydrate the store
	var snapshots *persistence.SnapshotStore
	if cfg.Database.Enabled || *consolidateOnce {
		snapshots, err = persistence.NewSnapshotStore(&persistence.Config{
			Type:        cfg.Database.Type,
			SQLitePath:  cfg.Database.SQLitePath,
			PostgresDSN: cfg.Database.PostgresDSN,
			LogLevel:    logger.Silent, // CRITICAL: Silence GORM stdout output for MCP
		})
		if err != nil {
			log.Fatalf("Failed to open snapshot store: %v", err)
		}
		defer snapshots.Close()

		mems, err := snapshots.Load()
		if err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
		if err := store.Restore(mems); err != nil {
			log.Fatalf("Failed to restore snapshot: %v", err)
		}
		log.Printf("Restored %d memories from %s snapshot", len(mems), cfg.Database.Type)
	}

	// MAINTENANCE MODE: consolidate the snapshot offline and exit
	if *consolidateOnce {
		runConsolidateMode(store, snapshots)
		return
	}

	// Background consolidation
	interval := time.Duration(cfg.Memory.ConsolidationInterval) * time.Millisecond
	var persister scheduler.Persister
	if snapshots != nil {
		persister = snapshots
	}
	sched := scheduler.NewScheduler(store, interval, persister)
	sched.Start()
	defer sched.Stop()

	// Create the MCP server with the full tool surface
	srv, err := server.NewMCPServer(cfg, store, snapshots)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Save a final snapshot on SIGINT/SIGTERM before exiting
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received %v, shutting down", sig)
		sched.Stop()
		if snapshots != nil {
			if err := snapshots.Save(store.Dump()); err != nil {
				log.Printf("Failed to save final snapshot: %v", err)
			}
		}
		os.Exit(0)
	}()

	log.Println("Running in stdio mode (MCP)")
	if err := mcpserver.ServeStdio(srv.GetMCPServer()); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	sched.Stop()
	if snapshots != nil {
		if err := snapshots.Save(store.Dump()); err != nil {
			log.Printf("Failed to save final snapshot: %v", err)
		}
	}
}

// runConsolidateMode runs one consolidation pass over the restored snapshot,
// saves the result, and exits.
func runConsolidateMode(store *memory.Store, snapshots *persistence.SnapshotStore) {
	before := store.Stats().TotalMemories

	if err := store.Consolidate(); err != nil {
		log.Fatalf("Consolidation failed: %v", err)
	}
	if err := snapshots.Save(store.Dump()); err != nil {
		log.Fatalf("Failed to save consolidated snapshot: %v", err)
	}

	after := store.Stats().TotalMemories
	log.Printf("Consolidation complete: %d -> %d memories", before, after)
}

// retentionPolicy maps the configured policy name onto a store policy.
func retentionPolicy(cfg *config.Config) memory.RetentionPolicy {
	maxAge := time.Duration(cfg.Memory.RetentionMaxAgeHours) * time.Hour

	switch cfg.Memory.RetentionPolicy {
	case "time_based":
		return memory.TimeBasedRetention(maxAge)
	case "count_based":
		return memory.CountBasedRetention(cfg.Memory.MaxMemories)
	case "importance_based":
		return memory.ImportanceBasedRetention(cfg.Memory.ImportanceThreshold)
	default:
		return memory.HybridRetention(maxAge, cfg.Memory.ImportanceThreshold)
	}
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *config.Config) {
	if dbType := os.Getenv("MUNIN_DB_TYPE"); dbType != "" {
		cfg.Database.Type = dbType
	}
	if dbPath := os.Getenv("MUNIN_DB_PATH"); dbPath != "" {
		cfg.Database.SQLitePath = dbPath
	}
	if dbDSN := os.Getenv("MUNIN_DB_DSN"); dbDSN != "" {
		cfg.Database.PostgresDSN = dbDSN
	}
}

// applyCLIOverrides applies CLI flag overrides to the config
func applyCLIOverrides(cfg *config.Config, dbType, dbPath, dbDSN string, persist bool) {
	if dbType != "" {
		cfg.Database.Type = dbType
	}
	if dbPath != "" {
		cfg.Database.SQLitePath = dbPath
	}
	if dbDSN != "" {
		cfg.Database.PostgresDSN = dbDSN
	}
	if persist {
		cfg.Database.Enabled = true
	}
}
