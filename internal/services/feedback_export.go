package services

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

var exportHeader = []string{"Date", "Time", "Career", "Impact", "Feedback", "Suggestion", "Weather"}

// ExportFilename is the attachment name for an export generated at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("feedback-export-%s.csv", now.Format("2006-01-02"))
}

// WriteFeedbackCSV writes records as CSV. Date and Time are bare; every text
// column is double-quoted with embedded quotes doubled. Timestamps are
// rendered in loc (UTC when nil).
func WriteFeedbackCSV(w io.Writer, records []models.Feedback, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(exportHeader, ","))

	for i := range records {
		rec := &records[i]
		ts := rec.Timestamp.In(loc)
		row := []string{
			ts.Format("2006-01-02"),
			ts.Format("15:04:05"),
			quoteCSV(rec.Career),
			quoteCSV(rec.Impact),
			quoteCSV(rec.Feedback),
			quoteCSV(rec.Suggestion),
			quoteCSV(weatherColumn(rec.WeatherData)),
		}
		bw.WriteByte('\n')
		bw.WriteString(strings.Join(row, ","))
	}
	bw.WriteByte('\n')

	return bw.Flush()
}

func weatherColumn(w *models.WeatherSnapshot) string {
	if w == nil {
		return ""
	}
	return strconv.FormatFloat(w.Temperature, 'f', -1, 64) + "°C, " + w.Condition
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
