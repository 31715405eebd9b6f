// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/citemaster/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), 30)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRoundtrip(t *testing.T) {
	s := openTestStore(t)

	rec := types.BibliographicRecord{
		DOI:     "10.1038/nature14539",
		Title:   "Deep learning",
		Authors: []types.Author{{Given: "Yann", Family: "LeCun"}},
		Journal: "Nature",
		Volume:  "521",
		Pages:   "436-444",
		Year:    2015,
	}

	_, ok := s.GetRecord("deep learning")
	assert.False(t, ok)

	s.PutRecord("deep learning", rec)
	got, ok := s.GetRecord("deep learning")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestRecordOverwrite(t *testing.T) {
	s := openTestStore(t)

	s.PutRecord("key", types.BibliographicRecord{DOI: "10.1/old"})
	s.PutRecord("key", types.BibliographicRecord{DOI: "10.1/new"})

	got, ok := s.GetRecord("key")
	require.True(t, ok)
	assert.Equal(t, "10.1/new", got.DOI)
}

func TestBibTeXRoundtrip(t *testing.T) {
	s := openTestStore(t)

	_, ok := s.GetBibTeX("10.1038/nature14539")
	assert.False(t, ok)

	s.PutBibTeX("10.1038/nature14539", "@article{LeCun2015, title = {Deep learning}}")
	body, ok := s.GetBibTeX("10.1038/nature14539")
	require.True(t, ok)
	assert.Contains(t, body, "Deep learning")
}

func TestExpiredEntriesAreMisses(t *testing.T) {
	s := openTestStore(t)

	base := time.Now()
	s.now = func() time.Time { return base }

	s.PutRecord("key", types.BibliographicRecord{DOI: "10.1/x"})
	s.PutBibTeX("10.1/x", "@article{x}")

	// Just inside the 30-day window.
	s.now = func() time.Time { return base.Add(29 * 24 * time.Hour) }
	_, ok := s.GetRecord("key")
	assert.True(t, ok)

	// Past the window both tables treat the rows as misses.
	s.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	_, ok = s.GetRecord("key")
	assert.False(t, ok)
	_, ok = s.GetBibTeX("10.1/x")
	assert.False(t, ok)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	s, err := Open(path, 0)
	require.NoError(t, err)
	defer s.Close()

	s.PutBibTeX("10.1/y", "@misc{y}")
	_, ok := s.GetBibTeX("10.1/y")
	assert.True(t, ok)
}
