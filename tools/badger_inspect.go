package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"group-lab/internal"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", defaultPath(), "Path to badger DB")
	// Empty prefix walks every namespace: user:, group:, member:, req:
	prefix := flag.String("prefix", "", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Group ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				row := internal.DefaultMapper(string(item.Key()), v)
				enrich(&row, v)
				table.Append([]string{row.Key, row.Type, row.Timestamp, row.EntityID, row.GroupID, row.Detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// enrich fills the detail column from the stored JSON record. Index and
// marker values are raw id strings and are shown as-is.
func enrich(row *internal.InspectRow, val []byte) {
	var record map[string]any
	if err := json.Unmarshal(val, &record); err != nil {
		row.Detail = string(val)
		return
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
	}
}

func defaultPath() string {
	if path := os.Getenv("BADGER_FILEPATH"); path != "" {
		return path
	}
	return "./badger"
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A dirty value log cannot be opened read-only, truncate it
		// through a short write open and retry.
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
