package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/core/index"
)

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme-10k-2025.txt"), []byte("annual report text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme-10q-q2.txt"), []byte("quarterly report text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	docs, err := LoadDirectory(dir, "ACME")
	require.NoError(t, err)
	require.Len(t, docs, 2, "non-txt files are skipped")
	for _, d := range docs {
		assert.Equal(t, "ACME", d.Ticker)
		assert.NotEmpty(t, d.Text)
		assert.False(t, d.PublishedAt.IsZero())
	}
}

func TestDocTypeFromName(t *testing.T) {
	cases := map[string]index.DocType{
		"acme-10k-2025.txt":   index.DocAnnual,
		"Annual_Report.txt":   index.DocAnnual,
		"acme-10-Q.txt":       index.DocQuarterly,
		"acme-8k-june.txt":    index.DocEvent,
		"press-release.txt":   index.DocEvent,
		"transcript-call.txt": index.DocOther,
	}
	for name, want := range cases {
		assert.Equal(t, want, DocTypeFromName(name), name)
	}
}
