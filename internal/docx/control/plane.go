// Package control orchestrates ingestion and querying on top of the store:
// it validates requests, drives the parsers, derives the relation graph,
// and exposes the read-side facade that the RPC and HTTP transports call
// into directly.
package control

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

// Plane is the control-plane handle for one tenant's store.
type Plane struct {
	store  *store.Store
	logger arbor.ILogger
}

// New wraps a store handle with the ingestion/query orchestration.
func New(s *store.Store, logger arbor.ILogger) *Plane {
	return &Plane{store: s, logger: logger}
}
