// Package csvdata holds the minimal text handling the upload flow needs:
// discovering column names from a file's first line and filtering data
// columns before upload. It deliberately does no real CSV parsing; the
// server owns interpretation of the uploaded text.
package csvdata

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Columns extracts the column names from the header of a data file.
// CSV files split on commas, TSV/TAB files on tabs; a trailing carriage
// return left by CRLF files is stripped from the last name.
func Columns(filename, contents string) ([]string, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	switch ext {
	case "csv":
		lines := strings.Split(contents, "\n")
		if len(lines) == 0 {
			return nil, nil
		}
		cols := strings.Split(lines[0], ",")
		last := cols[len(cols)-1]
		cols[len(cols)-1] = strings.TrimSuffix(last, "\r")
		return cols, nil
	case "tsv", "tab":
		var cols []string
		for _, field := range strings.Split(contents, "\t") {
			if !strings.Contains(field, "\n") {
				cols = append(cols, field)
				continue
			}
			cols = append(cols, strings.SplitN(field, "\n", 2)[0])
			break
		}
		return cols, nil
	}
	return nil, fmt.Errorf("unsupported file extension %q", ext)
}

// FilterColumns drops the columns whose checked flag is false and reformats
// the remaining data as comma-separated rows, one trailing newline per row.
// The input is split on commas and newlines the same way the upload screen
// does, so quoting and embedded separators are not handled.
func FilterColumns(contents string, checked []bool) string {
	total := len(checked)
	if total == 0 {
		return ""
	}

	kept := 0
	drop := make(map[int]bool, total)
	for i, c := range checked {
		if c {
			kept++
		} else {
			drop[(i+1)%total] = true // one-based index, modulo the column count
		}
	}
	if kept == 0 {
		return ""
	}

	fields := splitData(contents)

	var b strings.Builder
	written := 0
	for i, field := range fields {
		if drop[(i+1)%total] {
			continue
		}
		written++
		b.WriteString(strings.TrimSpace(field))
		if written%kept == 0 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// splitData separates file contents into one element per data point,
// splitting on commas and on newlines that start a new record.
func splitData(contents string) []string {
	var fields []string
	for _, line := range strings.Split(strings.TrimRight(contents, "\n"), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		fields = append(fields, strings.Split(line, ",")...)
	}
	return fields
}
