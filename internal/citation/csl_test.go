// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/citemaster/pkg/types"
)

func TestWriteCSL(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSL([]types.BibliographicRecord{solarRecord()}, &buf))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal([]byte(buf.String()), &items))
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "10.1016/j.rser.2020.109984", item.ID)
	assert.Equal(t, "article-journal", item.Type)
	assert.Equal(t, "Deep Learning for Solar Energy Forecasting: A Review", item.Title)
	assert.Equal(t, "Renewable and Sustainable Energy Reviews", item.Container)
	require.Len(t, item.Author, 2)
	assert.Equal(t, CSLName{Family: "Smith", Given: "John"}, item.Author[0])
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2020}}, item.Issued.DateParts)
}

func TestToCSLItem_OmitsZeroYear(t *testing.T) {
	item := toCSLItem(types.BibliographicRecord{DOI: "10.1/x", Title: "T"})
	assert.Nil(t, item.Issued)
}
