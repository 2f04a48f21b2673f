package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrInvalidEntry      = errors.New("invalid dataset entry")
)

// Column order of tabular datasets (CSV and XLSX).
const (
	colTerm = iota
	colTranslation
	colPartOfSpeech
	colExample
	colCategory
)

// DatasetLoader reads the bundled vocabulary file.
// The format is picked by extension: .json, .csv or .xlsx.
type DatasetLoader struct {
	path  string
	sheet string // xlsx sheet name, first sheet when empty
}

// NewDatasetLoader creates a loader for the file at path.
func NewDatasetLoader(path, sheet string) *DatasetLoader {
	return &DatasetLoader{path: path, sheet: sheet}
}

// Path returns the dataset location.
func (l *DatasetLoader) Path() string {
	return l.path
}

// Load reads all entries in file order. Entries come back without ids and flags.
func (l *DatasetLoader) Load(_ context.Context) ([]entities.Entry, error) {
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".json":
		return l.loadJSON()
	case ".csv":
		return l.loadCSV()
	case ".xlsx":
		return l.loadXLSX()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, l.path)
	}
}

// loadJSON accepts either {"words": [...]} or a bare array.
func (l *DatasetLoader) loadJSON() ([]entities.Entry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	var words []entities.Entry
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &words)
	} else {
		var wrapper struct {
			Words []entities.Entry `json:"words"`
		}
		err = json.Unmarshal(data, &wrapper)
		words = wrapper.Words
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal words JSON: %w", err)
	}

	for i := range words {
		normalizeEntry(&words[i])
		if err := validateEntry(&words[i]); err != nil {
			return nil, fmt.Errorf("word %d: %w", i+1, err)
		}
	}

	return words, nil
}

func (l *DatasetLoader) loadCSV() ([]entities.Entry, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // category column is optional
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}

	return rowsToEntries(rows)
}

func (l *DatasetLoader) loadXLSX() ([]entities.Entry, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	return rowsToEntries(rows)
}

// rowsToEntries converts tabular rows, skipping an optional header and blank lines.
func rowsToEntries(rows [][]string) ([]entities.Entry, error) {
	words := make([]entities.Entry, 0, len(rows))

	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}

		e := entities.Entry{
			Term:         cell(row, colTerm),
			Translation:  cell(row, colTranslation),
			PartOfSpeech: cell(row, colPartOfSpeech),
			Example:      cell(row, colExample),
		}
		if c := cell(row, colCategory); c != "" {
			e.Category = &c
		}

		if err := validateEntry(&e); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		words = append(words, e)
	}

	return words, nil
}

func normalizeEntry(e *entities.Entry) {
	e.Term = strings.TrimSpace(e.Term)
	e.Translation = strings.TrimSpace(e.Translation)
	e.PartOfSpeech = strings.TrimSpace(e.PartOfSpeech)
	e.Example = strings.TrimSpace(e.Example)
	if e.Category != nil {
		c := strings.TrimSpace(*e.Category)
		if c == "" {
			e.Category = nil
		} else {
			e.Category = &c
		}
	}
}

func validateEntry(e *entities.Entry) error {
	if e.Term == "" {
		return fmt.Errorf("%w: term cannot be empty", ErrInvalidEntry)
	}
	if e.Translation == "" {
		return fmt.Errorf("%w: translation cannot be empty", ErrInvalidEntry)
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, colTerm), "term") &&
		strings.EqualFold(cell(row, colTranslation), "translation")
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
