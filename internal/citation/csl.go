// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/citemaster/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names follow the CSL-JSON/CSL-YAML schema so that output
// is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type"`
	Title     string    `yaml:"title"`
	Author    []CSLName `yaml:"author,omitempty"`
	Container string    `yaml:"container-title,omitempty"`
	Volume    string    `yaml:"volume,omitempty"`
	Page      string    `yaml:"page,omitempty"`
	Publisher string    `yaml:"publisher,omitempty"`
	Issued    *CSLDate  `yaml:"issued,omitempty"`
	DOI       string    `yaml:"DOI,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family string `yaml:"family,omitempty"`
	Given  string `yaml:"given,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes records as a CSL-YAML list to w.
func WriteCSL(records []types.BibliographicRecord, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a BibliographicRecord to a CSLItem.
func toCSLItem(r types.BibliographicRecord) CSLItem {
	item := CSLItem{
		ID:        r.DOI,
		Type:      "article-journal",
		Title:     r.Title,
		Container: r.Journal,
		Volume:    r.Volume,
		Page:      r.Pages,
		Publisher: r.Publisher,
		DOI:       r.DOI,
	}
	for _, a := range r.Authors {
		item.Author = append(item.Author, CSLName{Family: a.Family, Given: a.Given})
	}
	if r.Year != 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	return item
}
