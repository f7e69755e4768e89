// Package store is the only component that speaks the backing database's
// dialect. It persists the canonical symbol/doc/relation graph on
// badgerhold over a per-tenant BadgerDB handle, grounded on the teacher's
// own internal/storage/badger package.
package store

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

const schemaMarkerKey = "_schema_bootstrap"

type schemaMarker struct {
	Version int `json:"version"`
}

// Store wraps one tenant's badgerhold handle. A Store is not safe to open
// twice against the same directory; the registry hands out exactly one
// Store per tenant handle.
type Store struct {
	db     *badgerhold.Store
	logger arbor.ILogger

	schemaOnce sync.Once
	schemaErr  error
}

// Options configures Open.
type Options struct {
	// Dir is the on-disk directory for this tenant's badger data. Ignored
	// when InMemory is set.
	Dir string
	// InMemory opens an ephemeral, non-persistent store, for DB_IN_MEMORY=true
	// (the default) where no on-disk tenant state should survive a restart.
	InMemory bool
}

// Open opens the badger handle described by opts and runs the schema
// bootstrap before returning. With InMemory set, Dir is ignored and no
// data touches disk; otherwise it opens (creating if absent) opts.Dir.
func Open(opts Options, logger arbor.ILogger) (*Store, error) {
	options := badgerhold.DefaultOptions
	options.Logger = nil
	if opts.InMemory {
		options.InMemory = true
		options.Dir = ""
		options.ValueDir = ""
	} else {
		options.Dir = opts.Dir
		options.ValueDir = opts.Dir
	}

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "open badger store", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying badger handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ensureSchema runs exactly once per handle. The required section writes a
// bootstrap marker and warms every entity/relation bucket so the first real
// query never pays for first-touch bucket creation; its failure fails Open.
// The optional section verifies badgerhold's automatically-maintained
// secondary indexes are queryable and only logs on failure — the
// translation of the original schema script's sentinel-delimited optional
// section that may not apply on older backend versions.
func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		if err := s.db.Upsert(schemaMarkerKey, &schemaMarker{Version: 1}); err != nil {
			s.schemaErr = docxerr.Wrap(docxerr.StorageFailure, "schema bootstrap: required section failed", err)
			return
		}

		warmups := []interface{}{
			&model.Project{}, &model.Ingest{}, &model.DocSource{},
			&model.Symbol{}, &model.DocBlock{}, &model.DocChunk{},
			&model.RelationRecord{},
		}
		for _, w := range warmups {
			if _, err := s.db.Count(w, nil); err != nil {
				s.schemaErr = docxerr.Wrap(docxerr.StorageFailure, "schema bootstrap: required section failed", err)
				return
			}
		}

		s.runOptionalSchemaSection()
	})
	return s.schemaErr
}

func (s *Store) runOptionalSchemaSection() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().Msgf("docx store: optional schema section panicked, ignoring: %v", r)
		}
	}()
	if _, err := s.db.Count(&model.Symbol{}, badgerhold.Where("ProjectID").Eq("")); err != nil {
		s.logger.Warn().Err(err).Msg("docx store: optional schema section failed, ignoring")
	}
}
