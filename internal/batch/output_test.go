// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/citemaster/pkg/types"
)

func sampleResult() types.BatchResult {
	return types.BatchResult{
		Outcomes: []types.Outcome{
			{
				Status:   types.OutcomeResolved,
				Title:    "Deep Learning",
				DOI:      "10.1038/nature14539",
				Record:   types.BibliographicRecord{DOI: "10.1038/nature14539", Title: "Deep learning", Year: 2015},
				Citation: "LeCun, Y. (2015). Deep learning. https://doi.org/10.1038/nature14539",
				BibTeX:   "@article{LeCun2015}",
			},
			{
				Status: types.OutcomeFailed,
				Title:  "Ghost Paper",
				Reason: `DOI not found for title "Ghost Paper"`,
			},
			{
				Status: types.OutcomeSkipped,
				Title:  "deep learning",
				Reason: `duplicate of "Deep Learning"`,
			},
		},
	}
}

func outputConfig(t *testing.T) types.OutputConfig {
	dir := t.TempDir()
	return types.OutputConfig{
		Dir:           filepath.Join(dir, "outputs"),
		CitationsFile: "citations_output.txt",
		BibTeXFile:    "bibtex_output.txt",
		ErrorLog:      filepath.Join(dir, "errors.log"),
	}
}

func TestWriteOutputs(t *testing.T) {
	cfg := outputConfig(t)

	written, err := WriteOutputs(sampleResult(), types.StyleAPA, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{cfg.CitationsPath(), cfg.BibTeXPath()}, written)

	citations, err := os.ReadFile(cfg.CitationsPath())
	require.NoError(t, err)
	assert.Contains(t, string(citations), "Title: Deep Learning")
	assert.Contains(t, string(citations), "DOI: 10.1038/nature14539")
	assert.Contains(t, string(citations), "Citation (APA):")
	// Failed and skipped titles never reach the citations file.
	assert.NotContains(t, string(citations), "Ghost Paper")

	bib, err := os.ReadFile(cfg.BibTeXPath())
	require.NoError(t, err)
	assert.Equal(t, "@article{LeCun2015}\n", string(bib))

	errLog, err := os.ReadFile(cfg.ErrorLog)
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "Ghost Paper - DOI not found")
	assert.NotContains(t, string(errLog), "deep learning")
}

func TestWriteOutputs_NoBibTeXFileWithoutEntries(t *testing.T) {
	cfg := outputConfig(t)
	result := sampleResult()
	result.Outcomes[0].BibTeX = ""

	written, err := WriteOutputs(result, types.StyleMLA, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{cfg.CitationsPath()}, written)

	_, statErr := os.Stat(cfg.BibTeXPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestAppendErrors_AccumulatesAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	outcomes := []types.Outcome{
		{Status: types.OutcomeFailed, Title: "A", Reason: "boom"},
	}

	require.NoError(t, AppendErrors(path, outcomes))
	require.NoError(t, AppendErrors(path, outcomes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "A - boom"))
}

func TestAppendErrors_NoFileWithoutFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	outcomes := []types.Outcome{
		{Status: types.OutcomeResolved, Title: "A"},
	}

	require.NoError(t, AppendErrors(path, outcomes))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteCSL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.yaml")
	require.NoError(t, WriteCSL(sampleResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "10.1038/nature14539")
	assert.NotContains(t, string(data), "Ghost Paper")
}
