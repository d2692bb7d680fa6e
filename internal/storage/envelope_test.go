package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeLegacyBareArray(t *testing.T) {
	var loaded []record
	err := decodeEnvelope("legacy", []byte(`[{"id":1,"name":"a"}]`), &loaded)
	require.NoError(t, err)
	require.Equal(t, []record{{ID: 1, Name: "a"}}, loaded)
}

func TestMigrationRunsAtLoad(t *testing.T) {
	// Version 0 records used "title"; version 1 renames it to "name".
	RegisterMigration("migrate_test", 0, func(raw json.RawMessage) (json.RawMessage, error) {
		var old []map[string]any
		if err := json.Unmarshal(raw, &old); err != nil {
			return nil, err
		}
		for _, r := range old {
			if title, ok := r["title"]; ok {
				r["name"] = title
				delete(r, "title")
			}
		}
		return json.Marshal(old)
	})

	backend := NewMemoryBackend()
	require.NoError(t, backend.Save(context.Background(), "migrate_test",
		[]byte(`{"schema_version":0,"records":[{"id":4,"title":"old"}]}`)))

	adapter := NewAdapter(backend, nil)
	var loaded []record
	require.NoError(t, adapter.Load(context.Background(), "migrate_test", &loaded))
	require.Equal(t, []record{{ID: 4, Name: "old"}}, loaded)

	// New writes carry the current schema version.
	res := adapter.Save(context.Background(), "migrate_test", loaded)
	require.NoError(t, res.Err)

	data, found, err := backend.Load(context.Background(), "migrate_test")
	require.NoError(t, err)
	require.True(t, found)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, 1, env.SchemaVersion)
}
