// Package refdata imports semicolon-delimited reference data CSV files.
// The source files come from a legacy system and arrive in a mix of
// encodings, mostly latin1.
package refdata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEncoding reports that no candidate encoding produced a clean decode.
var ErrEncoding = errors.New("refdata: no usable encoding")

type candidate struct {
	name   string
	decode func([]byte) (string, error)
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(raw []byte) (string, error) {
		out, err := cm.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func decodeUTF8Sig(raw []byte) (string, error) {
	if !bytes.HasPrefix(raw, utf8BOM) {
		return "", errors.New("missing BOM")
	}
	trimmed := bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(trimmed) {
		return "", errors.New("invalid utf-8")
	}
	return string(trimmed), nil
}

func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errors.New("invalid utf-8")
	}
	return string(raw), nil
}

// Probing order matches the legacy exports: latin1 dominates, utf-8 files
// are the exception. The utf-8-sig probe runs first because it only claims
// files carrying a BOM; left after latin1 it would never win, and the BOM
// bytes would leak into the header as text.
var candidates = []candidate{
	{"utf-8-sig", decodeUTF8Sig},
	{"latin1", charmapDecoder(charmap.ISO8859_1)},
	{"cp1252", charmapDecoder(charmap.Windows1252)},
	{"iso-8859-1", charmapDecoder(charmap.ISO8859_1)},
	{"utf-8", decodeUTF8},
}

// OpenCSV reads the file, probes the candidate encodings in order and
// returns a semicolon-delimited reader over the first clean decode,
// together with the encoding that won.
func OpenCSV(path string) (*csv.Reader, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("refdata: read %s: %w", path, err)
	}
	for _, c := range candidates {
		text, err := c.decode(raw)
		if err != nil {
			continue
		}
		reader := csv.NewReader(bytes.NewReader([]byte(text)))
		reader.Comma = ';'
		reader.FieldsPerRecord = -1
		return reader, c.name, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrEncoding, path)
}

// readHeader maps header names to column indexes.
func readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("refdata: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[trimCell(name)] = i
	}
	return cols, nil
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}

// cell returns the trimmed value of a named column, or "" when absent.
func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return trimCell(record[i])
}
