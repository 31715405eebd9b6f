// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"strconv"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/meshintel/citemaster/pkg/types"
)

// Enrich backfills empty record fields from a fetched BibTeX entry. The
// CrossRef search response sometimes omits pages, volume, or publisher that
// the content-negotiated entry carries. Fields already present on the record
// win; an unparsable entry leaves the record untouched.
func Enrich(rec types.BibliographicRecord, entry types.BibTeXEntry) types.BibliographicRecord {
	parsed, err := bibtex.Parse(strings.NewReader(entry.Body))
	if err != nil || len(parsed.Entries) == 0 {
		return rec
	}
	e := parsed.Entries[0]
	field := func(name string) string {
		if v, ok := e.Fields[name]; ok && v != nil {
			return strings.TrimSpace(v.String())
		}
		return ""
	}

	if rec.Journal == "" {
		rec.Journal = field("journal")
	}
	if rec.Volume == "" {
		rec.Volume = field("volume")
	}
	if rec.Pages == "" {
		rec.Pages = strings.ReplaceAll(field("pages"), "--", "-")
	}
	if rec.Publisher == "" {
		rec.Publisher = field("publisher")
	}
	if rec.Year == 0 {
		if y, convErr := strconv.Atoi(field("year")); convErr == nil {
			rec.Year = y
		}
	}
	return rec
}
