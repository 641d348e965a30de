package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	GroupID   string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes the raw key space over HTTP so an operator
// can inspect a live database without attaching a debugger. The mapper
// turns each key/value pair into a displayable row.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "group:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		// Listens on all interfaces so the dashboard is reachable over the network
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// DefaultMapper classifies a row from the key layout alone. Value-aware
// mappers belong to the binaries that know the record shapes.
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		GroupID:   "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	switch {
	case len(parts) >= 3 && parts[0] == "user" && parts[1] == "id":
		row.Type = "USER"
		row.EntityID = shortID(parts[2])
	case len(parts) >= 3 && parts[0] == "user" && parts[1] == "email":
		row.Type = "ALIAS"
		row.EntityID = strings.Join(parts[2:], ":")
	case len(parts) >= 2 && parts[0] == "group":
		row.Type = "GROUP"
		row.EntityID = shortID(parts[1])
	case len(parts) >= 3 && parts[0] == "member":
		row.Type = "MEMBER"
		row.GroupID = shortID(parts[1])
		row.EntityID = shortID(parts[2])
	case len(parts) >= 3 && parts[0] == "req" && parts[1] == "id":
		row.Type = "REQUEST"
		row.EntityID = shortID(parts[2])
	case len(parts) >= 5 && parts[0] == "req" && parts[1] == "group":
		row.Type = "RQ-INDEX"
		row.GroupID = shortID(parts[2])
		if tsNano, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
		row.EntityID = shortID(parts[4])
	case len(parts) >= 4 && parts[0] == "req" && parts[1] == "pending":
		row.Type = "PENDING"
		row.GroupID = shortID(parts[2])
		row.EntityID = shortID(parts[3])
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
