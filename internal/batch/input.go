// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshintel/citemaster/pkg/types"
)

// ReadTitles loads paper titles from a .txt file (one title per line, blank
// lines ignored) or a .csv file (first column per row, an optional "title"
// header row is skipped). Any other extension is a ValidationError.
func ReadTitles(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return readTxt(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, &types.ValidationError{
			Field: "file", Value: path, Reason: "unsupported format, expected .txt or .csv",
		}
	}
}

func readTxt(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return titles, nil
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var titles []string
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		title := strings.TrimSpace(row[0])
		if title == "" {
			continue
		}
		if i == 0 && strings.EqualFold(title, "title") {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}
