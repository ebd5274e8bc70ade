// Package ingest turns locally stored filings into RawDocuments for the
// indexer. Live filing acquisition is a separate collaborator; this package
// only adapts what is already on disk.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"intrinsic_valuation/pkg/core/index"
)

// LoadDirectory reads every .txt file in dir as one document scoped to
// ticker. Document type is inferred from the filename, publication date from
// the file's modification time.
func LoadDirectory(dir, ticker string) ([]index.RawDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading document directory: %w", err)
	}
	var docs []index.RawDocument
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		docs = append(docs, index.RawDocument{
			ID:          strings.TrimSuffix(e.Name(), ".txt"),
			Ticker:      ticker,
			Type:        DocTypeFromName(e.Name()),
			PublishedAt: info.ModTime(),
			Text:        string(data),
		})
	}
	return docs, nil
}

// DocTypeFromName classifies a filing by its filename: 10-K style names map
// to annual, 10-Q to quarterly, 8-K and press releases to event.
func DocTypeFromName(name string) index.DocType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "10k") || strings.Contains(lower, "10-k") || strings.Contains(lower, "annual"):
		return index.DocAnnual
	case strings.Contains(lower, "10q") || strings.Contains(lower, "10-q") || strings.Contains(lower, "quarter"):
		return index.DocQuarterly
	case strings.Contains(lower, "8k") || strings.Contains(lower, "8-k") || strings.Contains(lower, "event") || strings.Contains(lower, "press"):
		return index.DocEvent
	default:
		return index.DocOther
	}
}
