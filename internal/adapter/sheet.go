package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

// Sheet I/O: the round-trip surface for external editing tools. Export
// writes every record with its stable ID; import consumes edited
// translations keyed by that ID. Text content never influences the key,
// so editors may reorder or drop rows freely.

var sheetHeader = []string{"id", "substrate", "location", "original", "translated", "skip", "skip_reason"}

// ExportSheet writes records as CSV.
func ExportSheet(w io.Writer, records []m.TextRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheetHeader); err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	for i := range records {
		rec := &records[i]
		row := []string{
			rec.ID,
			string(rec.Substrate),
			rec.Location(),
			rec.OriginalText,
			rec.TranslatedText,
			strconv.FormatBool(rec.Skip),
			rec.SkipReason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write sheet row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportSheet reads an edited sheet and returns translations keyed by
// record ID. Only the id and translated columns are consumed; everything
// else is display data that editors are free to mangle.
func ImportSheet(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read sheet header: %w", err)
	}

	idCol, translatedCol := -1, -1
	for i, name := range header {
		switch name {
		case "id":
			idCol = i
		case "translated":
			translatedCol = i
		}
	}
	if idCol < 0 || translatedCol < 0 {
		return nil, fmt.Errorf("sheet is missing id/translated columns")
	}

	translations := make(map[string]string)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sheet row: %w", err)
		}
		if idCol >= len(row) || translatedCol >= len(row) {
			continue
		}
		if row[idCol] == "" {
			continue
		}
		translations[row[idCol]] = row[translatedCol]
	}

	return translations, nil
}
