package storage

import (
	"context"
	"fmt"

	"github.com/tair/storefront/pkg/logger"
)

// Adapter persists named record collections through a primary backend with an
// explicit fallback. Every write reports where it landed; a primary failure
// is logged and retried on the fallback rather than swallowed.
type Adapter struct {
	primary  Backend
	fallback Backend
}

// NewAdapter creates an adapter. The fallback may be nil, in which case a
// primary failure is terminal.
func NewAdapter(primary, fallback Backend) *Adapter {
	return &Adapter{primary: primary, fallback: fallback}
}

// Save serializes records into a versioned envelope and writes it.
func (a *Adapter) Save(ctx context.Context, collection string, records any) WriteResult {
	data, err := encodeEnvelope(collection, records)
	if err != nil {
		return WriteResult{Err: err}
	}

	if err := a.primary.Save(ctx, collection, data); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("backend", a.primary.Name()).
			Str("collection", collection).
			Msg("Primary backend write failed, trying fallback")

		if a.fallback == nil {
			return WriteResult{Backend: a.primary.Name(), Err: err}
		}
		if ferr := a.fallback.Save(ctx, collection, data); ferr != nil {
			return WriteResult{
				Backend:  a.fallback.Name(),
				FellBack: true,
				Err:      fmt.Errorf("primary: %v; fallback: %w", err, ferr),
			}
		}
		return WriteResult{Backend: a.fallback.Name(), FellBack: true}
	}

	return WriteResult{Backend: a.primary.Name()}
}

// Load reads a collection into records, consulting the primary backend first
// and the fallback second. Only a collection that is confirmed absent decodes
// to the zero value; a backend read failure is always surfaced, since
// repositories are read-modify-write and a masked outage would let the next
// save persist a truncated collection.
func (a *Adapter) Load(ctx context.Context, collection string, records any) error {
	data, found, primaryErr := a.primary.Load(ctx, collection)
	if primaryErr != nil {
		logger.Warn(ctx).
			Err(primaryErr).
			Str("backend", a.primary.Name()).
			Str("collection", collection).
			Msg("Primary backend read failed, trying fallback")
		found = false
	}
	if !found && a.fallback != nil {
		var err error
		data, found, err = a.fallback.Load(ctx, collection)
		if err != nil {
			if primaryErr != nil {
				return fmt.Errorf("failed to load %s: primary: %v; fallback: %w", collection, primaryErr, err)
			}
			return fmt.Errorf("failed to load %s: %w", collection, err)
		}
		if found && primaryErr == nil {
			a.repair(ctx, collection, data)
		}
	}
	if !found {
		// The primary errored and nothing could vouch for the collection
		// being absent.
		if primaryErr != nil {
			return fmt.Errorf("failed to load %s from %s: %w", collection, a.primary.Name(), primaryErr)
		}
		return nil
	}
	return decodeEnvelope(collection, data, records)
}

// repair copies a blob served by the fallback back onto a healthy primary so
// later reads stop depending on the fallback. Best effort; a failed repair
// leaves the fallback copy authoritative.
func (a *Adapter) repair(ctx context.Context, collection string, data []byte) {
	if err := a.primary.Save(ctx, collection, data); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("backend", a.primary.Name()).
			Str("collection", collection).
			Msg("Failed to repair primary from fallback copy")
		return
	}
	logger.Info(ctx).
		Str("backend", a.primary.Name()).
		Str("collection", collection).
		Msg("Primary repaired from fallback copy")
}

// Ping checks both backends and returns the first error.
func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.primary.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", a.primary.Name(), err)
	}
	if a.fallback != nil {
		if err := a.fallback.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", a.fallback.Name(), err)
		}
	}
	return nil
}
