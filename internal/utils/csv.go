package utils

import (
	"encoding/csv"
	"errors"
	"io"
)

var ErrNoExportData = errors.New("no data to export")

// WriteCSV emits a header row followed by one row per record. Fields
// containing separators or quotes are quoted by the encoder. Zero records is
// an explicit error, never an empty file.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return ErrNoExportData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
