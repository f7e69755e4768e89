package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/common"
	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/registry"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
	"github.com/ternarybob/docx-mcp/internal/docx/transport/httpapi"
	"github.com/ternarybob/docx-mcp/internal/docx/transport/mcptools"
)

func main() {
	configPath := os.Getenv("DOCX_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("docx-mcp.toml"); err == nil {
			configPath = "docx-mcp.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := common.SetupLogger(config)
	common.PrintBanner(config, logger)

	reg := registry.New(registry.Config{
		Build:         buildHandle(config, logger),
		TTL:           config.RegistryTTL(),
		SweepInterval: config.RegistrySweepInterval(),
		MaxEntries:    config.Registry.MaxEntries,
		TenantDir:     tenantDir(config),
	}, logger)
	reg.SpawnSweeper()
	defer reg.Stop()

	var ingestSrv *httpapi.Server
	if config.Transport.IngestServe {
		ingestSrv = httpapi.New(httpapi.Config{
			Addr:           config.Transport.IngestAddr,
			MaxBodyBytes:   config.Transport.IngestMaxBodyBytes,
			RequestTimeout: config.IngestTimeout(),
		}, reg, logger)

		go func() {
			if err := ingestSrv.Start(); err != nil {
				logger.Fatal().Err(err).Msg("ingest http server failed")
			}
		}()
	}

	mcpServer := mcptools.Build(reg, logger, common.GetVersion())

	var mcpHTTPSrv *server.StreamableHTTPServer
	if config.Transport.McpServe {
		// mcp-go's stdio transport (server.ServeStdio) is the only transport
		// directly exercised anywhere in this codebase's history; no HTTP
		// transport call is. StreamableHTTPServer is mcp-go's documented HTTP
		// transport for exposing an *server.MCPServer over a listen address,
		// used here on that basis rather than on a confirmed local usage.
		mcpHTTPSrv = server.NewStreamableHTTPServer(mcpServer)
		go func() {
			logger.Info().Str("addr", config.Transport.McpHTTPAddr).Msg("docx mcp http server starting")
			if err := mcpHTTPSrv.Start(config.Transport.McpHTTPAddr); err != nil && err != http.ErrServerClosed {
				logger.Fatal().Err(err).Msg("mcp http server failed")
			}
		}()
	}

	if config.Transport.EnableStdio {
		go func() {
			if err := server.ServeStdio(mcpServer); err != nil {
				logger.Fatal().Err(err).Msg("mcp stdio server failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if ingestSrv != nil {
		if err := ingestSrv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("ingest http server shutdown failed")
		}
	}
	if mcpHTTPSrv != nil {
		if err := mcpHTTPSrv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("mcp http server shutdown failed")
		}
	}

	common.PrintShutdownBanner(logger)
}

// buildHandle wires a per-tenant store directory under
// data/<namespace>/<tenant id>, the badgerhold equivalent of the original
// docx-mcpd binary's per-solution SurrealDB namespace/database selection.
// DB_IN_MEMORY=true (the default) skips disk entirely, matching the
// original's mem:// connection string path.
func buildHandle(config *common.Config, logger arbor.ILogger) registry.BuildHandleFunc {
	return func(tenantID string) (*registry.Handle, error) {
		opts := store.Options{InMemory: config.Database.InMemory}
		if !opts.InMemory {
			opts.Dir = tenantDir(config)(tenantID)
		}
		s, err := store.Open(opts, logger)
		if err != nil {
			return nil, err
		}
		return &registry.Handle{Store: s, Control: control.New(s, logger)}, nil
	}
}

// tenantDir derives the on-disk directory for a tenant's store, shared by
// buildHandle (to open it) and the registry's DeleteTenant (to remove it),
// so the two always agree on the same path. Returns empty when the backend
// is in-memory, telling DeleteTenant there is no directory to remove.
func tenantDir(config *common.Config) func(tenantID string) string {
	return func(tenantID string) string {
		if config.Database.InMemory {
			return ""
		}
		return filepath.Join("data", config.Database.Namespace, tenantID)
	}
}
