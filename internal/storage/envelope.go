package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// envelope wraps every persisted collection with a schema version so records
// can be migrated at load time instead of relying on shape guessing.
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Records       json.RawMessage `json:"records"`
}

// Migration rewrites the raw records of a collection from version v to v+1.
type Migration func(records json.RawMessage) (json.RawMessage, error)

type migrationKey struct {
	collection string
	from       int
}

var (
	migrationsMu sync.RWMutex
	migrations   = map[migrationKey]Migration{}
	versions     = map[string]int{}
)

// RegisterMigration installs the migration for a collection from schema
// version `from` to `from+1`. The current version of the collection becomes
// the highest registered target. Registration happens in package init
// functions, before any adapter is used.
func RegisterMigration(collection string, from int, m Migration) {
	migrationsMu.Lock()
	defer migrationsMu.Unlock()
	migrations[migrationKey{collection, from}] = m
	if versions[collection] < from+1 {
		versions[collection] = from + 1
	}
}

// CurrentVersion returns the schema version new writes of a collection carry.
func CurrentVersion(collection string) int {
	migrationsMu.RLock()
	defer migrationsMu.RUnlock()
	return versions[collection]
}

// RegisteredCollections lists collections with at least one migration, sorted.
func RegisteredCollections() []string {
	migrationsMu.RLock()
	defer migrationsMu.RUnlock()
	out := make([]string, 0, len(versions))
	for c := range versions {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func encodeEnvelope(collection string, records any) ([]byte, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s records: %w", collection, err)
	}
	return json.Marshal(envelope{
		SchemaVersion: CurrentVersion(collection),
		Records:       raw,
	})
}

// decodeEnvelope unwraps a stored blob and replays any pending migrations.
// Blobs written before the envelope was introduced are bare JSON arrays and
// are treated as schema version 0.
func decodeEnvelope(collection string, data []byte, records any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Records == nil {
		// Legacy layout: the blob is the record array itself.
		env = envelope{SchemaVersion: 0, Records: data}
	}

	raw := env.Records
	target := CurrentVersion(collection)
	for v := env.SchemaVersion; v < target; v++ {
		migrationsMu.RLock()
		m, ok := migrations[migrationKey{collection, v}]
		migrationsMu.RUnlock()
		if !ok {
			return fmt.Errorf("no migration for %s from schema version %d", collection, v)
		}
		migrated, err := m(raw)
		if err != nil {
			return fmt.Errorf("migration of %s from version %d failed: %w", collection, v, err)
		}
		raw = migrated
	}

	if err := json.Unmarshal(raw, records); err != nil {
		return fmt.Errorf("failed to unmarshal %s records: %w", collection, err)
	}
	return nil
}
