package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"group-lab/internal"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)
	internal.StartDebugServer(db, config.DebugPort, "/inspect", MembershipMapper, keySpaceStats(db))

	// 4. Block until interrupted, the server itself runs detached
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}

// keySpaceStats counts live keys per namespace on every page load.
func keySpaceStats(db *badger.DB) internal.StatsProvider {
	return func() map[string]any {
		counts := map[string]int{}
		_ = db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for _, ns := range []string{"user:id:", "group:", "member:", "req:id:", "req:pending:"} {
				counts[ns] = 0
				for it.Seek([]byte(ns)); it.ValidForPrefix([]byte(ns)); it.Next() {
					counts[ns]++
				}
			}
			return nil
		})
		return map[string]any{
			"Mode":     "Viewer (Read-Only)",
			"Time":     time.Now().Format(time.RFC822),
			"Users":    counts["user:id:"],
			"Groups":   counts["group:"],
			"Members":  counts["member:"],
			"Requests": counts["req:id:"],
			"Pending":  counts["req:pending:"],
		}
	}
}

// MembershipMapper enriches the generic rows with fields decoded from
// the stored JSON records.
func MembershipMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var record map[string]any
	if err := json.Unmarshal(val, &record); err != nil {
		// Index and marker values are raw id strings, not JSON
		row.Detail = string(val)
		return row
	}

	if nano, ok := record["created_at"].(float64); ok {
		row.Timestamp = time.Unix(0, int64(nano)).Format("15:04:05")
	}
	if nano, ok := record["joined_at"].(float64); ok {
		row.Timestamp = time.Unix(0, int64(nano)).Format("15:04:05")
	}

	switch row.Type {
	case "USER":
		row.Detail = fmt.Sprintf("%v <%v>", record["username"], record["email"])
	case "GROUP":
		row.Detail = fmt.Sprintf("%v [%v]", record["name"], record["type"])
	case "MEMBER":
		row.Detail = fmt.Sprintf("role=%v", record["role"])
	case "REQUEST":
		row.Detail = fmt.Sprintf("status=%v", record["status"])
	default:
		row.Detail = "Size: " + strconv.Itoa(len(val)) + " bytes"
	}
	return row
}
