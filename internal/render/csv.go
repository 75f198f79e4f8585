package render

import (
	"cardiostent/internal/model"
	"encoding/csv"
	"io"
	"strconv"
)

// CSVTimeLayout writes UTC timestamps with millisecond precision
const CSVTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// CSVHeader is the first row of the export
var CSVHeader = []string{"Timestamp", "Cohort", "Segment", "Evidence", "Experience", "Economics"}

// WriteCSV writes one row per record in the given order. Fields are quoted
// only when needed and embedded quotes are doubled.
func WriteCSV(w io.Writer, records []*model.Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if err := cw.Write(csvRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(rec *model.Submission) []string {
	ts := ""
	if !rec.Timestamp.IsZero() {
		ts = rec.Timestamp.UTC().Format(CSVTimeLayout)
	}
	row := []string{ts, string(rec.Cohort), orNA(rec.Segment)}
	for _, f := range model.AllScoreFields {
		if v, ok := rec.Score(f); ok {
			row = append(row, strconv.Itoa(v))
		} else {
			row = append(row, "")
		}
	}
	return row
}
