package control

import (
	"os"
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// resolveIngestPayload prefers the inline value over the path; when
// neither is usable it reports which field was expected. A path read that
// fails because the file is missing gets a hint about Docker bind mounts,
// since the server process and the caller may not share a filesystem.
func resolveIngestPayload(raw, path, field string) (string, error) {
	if strings.TrimSpace(raw) != "" {
		return stripBOM(raw), nil
	}
	if trimmedPath := strings.TrimSpace(path); trimmedPath != "" {
		contents, err := os.ReadFile(trimmedPath)
		if err != nil {
			message := "failed to read " + field + "_path '" + trimmedPath + "': " + err.Error()
			if os.IsNotExist(err) {
				message += "; file not found on server host. If running in Docker, mount the file into the container or send raw contents instead."
			}
			return "", docxerr.Invalid(message)
		}
		return stripBOM(string(contents)), nil
	}
	return "", docxerr.Invalid("%s is required (provide %s or %s_path)", field, field, field)
}

// stripBOM removes a leading UTF-8 byte order mark, if present.
func stripBOM(value string) string {
	return strings.TrimPrefix(value, "﻿")
}

// dedupeSymbols keeps the first symbol seen for each symbol_key and drops
// later duplicates, matching the ingest contract's "first occurrence
// wins" rule.
func dedupeSymbols(symbols []model.Symbol) []model.Symbol {
	seen := make(map[string]bool, len(symbols))
	deduped := make([]model.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if !seen[s.SymbolKey] {
			seen[s.SymbolKey] = true
			deduped = append(deduped, s)
		}
	}
	return deduped
}
