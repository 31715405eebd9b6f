// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation renders bibliographic records as formatted citation
// strings in APA, MLA, or IEEE style. Formatting is pure and deterministic;
// all I/O lives in the callers.
package citation

import (
	"fmt"
	"strings"

	"github.com/meshintel/citemaster/pkg/types"
)

// unknownAuthor is rendered when a record carries no authors at all.
const unknownAuthor = "Unknown Author"

// mlaEtAlThreshold is the author count above which MLA collapses the list to
// the first author plus "et al."
const mlaEtAlThreshold = 3

// Format renders rec in the given style. The style must come from
// types.ParseStyle; anything else is a FormatError naming the token.
func Format(rec types.BibliographicRecord, style types.CitationStyle) (string, error) {
	switch style {
	case types.StyleAPA:
		return apa(rec), nil
	case types.StyleMLA:
		return mla(rec), nil
	case types.StyleIEEE:
		return ieee(rec), nil
	default:
		return "", &types.FormatError{Style: string(style)}
	}
}

// apa renders: Last, F. M., & Last2, F2. (Year). Title. Journal, Volume,
// Pages. https://doi.org/DOI — omitting missing optional fields without
// stray punctuation.
func apa(rec types.BibliographicRecord) string {
	var b strings.Builder
	b.WriteString(apaAuthors(rec.Authors))
	if rec.Year != 0 {
		fmt.Fprintf(&b, " (%d).", rec.Year)
	} else if !strings.HasSuffix(b.String(), ".") {
		b.WriteString(".")
	}

	b.WriteString(" ")
	b.WriteString(rec.Title)
	if !endsInPunct(rec.Title) {
		b.WriteString(".")
	}

	if rec.Journal != "" {
		b.WriteString(" ")
		b.WriteString(rec.Journal)
		if rec.Volume != "" {
			b.WriteString(", " + rec.Volume)
		}
		if rec.Pages != "" {
			b.WriteString(", " + rec.Pages)
		}
		b.WriteString(".")
	}

	if rec.DOI != "" {
		b.WriteString(" https://doi.org/" + rec.DOI)
	}
	return b.String()
}

// mla renders: Last, First, [...]. "Title." *Journal*, vol. V, Year, pp. P.
// https://doi.org/DOI. More than mlaEtAlThreshold authors collapse to the
// primary author plus "et al."
func mla(rec types.BibliographicRecord) string {
	var b strings.Builder
	b.WriteString(mlaAuthors(rec.Authors))
	b.WriteString(`. "` + rec.Title + `."`)

	var tail []string
	if rec.Journal != "" {
		j := "*" + rec.Journal + "*"
		if rec.Volume != "" {
			j += ", vol. " + rec.Volume
		}
		tail = append(tail, j)
	}
	if rec.Year != 0 {
		tail = append(tail, fmt.Sprintf("%d", rec.Year))
	}
	if rec.Pages != "" {
		tail = append(tail, pageLabel(rec.Pages))
	}
	if len(tail) > 0 {
		b.WriteString(" " + strings.Join(tail, ", ") + ".")
	}

	if rec.DOI != "" {
		b.WriteString(" https://doi.org/" + rec.DOI + ".")
	}
	return b.String()
}

// ieee renders: F. Last and F2. Last2, "Title," *Journal*, vol. V, pp. P,
// Year, doi: DOI.
func ieee(rec types.BibliographicRecord) string {
	var segs []string
	if rec.Journal != "" {
		segs = append(segs, "*"+rec.Journal+"*")
	}
	if rec.Volume != "" {
		segs = append(segs, "vol. "+rec.Volume)
	}
	if rec.Pages != "" {
		segs = append(segs, pageLabel(rec.Pages))
	}
	if rec.Year != 0 {
		segs = append(segs, fmt.Sprintf("%d", rec.Year))
	}
	if rec.DOI != "" {
		segs = append(segs, "doi: "+rec.DOI)
	}

	var b strings.Builder
	b.WriteString(ieeeAuthors(rec.Authors))
	if len(segs) == 0 {
		// Nothing follows the title, so the closing quote takes the period.
		b.WriteString(`, "` + rec.Title + `."`)
		return b.String()
	}
	b.WriteString(`, "` + rec.Title + `," `)
	b.WriteString(strings.Join(segs, ", "))
	b.WriteString(".")
	return b.String()
}

// apaAuthors joins authors as "Last, F. M." with ", " and a final ", & ".
func apaAuthors(authors []types.Author) string {
	if len(authors) == 0 {
		return unknownAuthor
	}
	parts := make([]string, len(authors))
	for i, a := range authors {
		if a.Given == "" {
			parts[i] = a.Family
			continue
		}
		parts[i] = a.Family + ", " + initials(a.Given, " ")
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + ", & " + parts[len(parts)-1]
}

// mlaAuthors joins authors as "Last, First"; above the threshold only the
// primary author is named, followed by "et al."
func mlaAuthors(authors []types.Author) string {
	if len(authors) == 0 {
		return unknownAuthor
	}
	name := func(a types.Author) string {
		if a.Given == "" {
			return a.Family
		}
		return a.Family + ", " + a.Given
	}
	if len(authors) > mlaEtAlThreshold {
		return name(authors[0]) + ", et al"
	}
	parts := make([]string, len(authors))
	for i, a := range authors {
		parts[i] = name(a)
	}
	return strings.Join(parts, ", ")
}

// ieeeAuthors joins authors initials-first as "F. Last", with "and" before
// the final author.
func ieeeAuthors(authors []types.Author) string {
	if len(authors) == 0 {
		return unknownAuthor
	}
	parts := make([]string, len(authors))
	for i, a := range authors {
		if a.Given == "" {
			parts[i] = a.Family
			continue
		}
		parts[i] = initials(a.Given, " ") + " " + a.Family
	}
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

// initials abbreviates given names: "John Michael" becomes "J. M.".
func initials(given, sep string) string {
	fields := strings.Fields(given)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		r := []rune(f)
		parts = append(parts, string(r[0])+".")
	}
	return strings.Join(parts, sep)
}

// pageLabel prefixes pages with "pp." for ranges and "p." for single pages.
func pageLabel(pages string) string {
	if strings.ContainsAny(pages, "-–") {
		return "pp. " + pages
	}
	return "p. " + pages
}

// endsInPunct reports whether s already carries terminal punctuation, so
// titles ending in "?" or "!" do not get a stray period.
func endsInPunct(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}
