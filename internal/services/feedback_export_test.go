package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

func TestWriteFeedbackCSV(t *testing.T) {
	records := []models.Feedback{
		{
			Impact:      "transport",
			Career:      "Ingenieria de Sistemas",
			Feedback:    `El bus dijo "no paso"`,
			Suggestion:  "Más rutas, por favor",
			Timestamp:   time.Date(2025, 3, 10, 14, 5, 9, 0, time.UTC),
			WeatherData: &models.WeatherSnapshot{Temperature: 28.4, Condition: "Lluvia"},
		},
		{
			Impact:     "health",
			Feedback:   "Mucho calor",
			Suggestion: "Agua",
			Timestamp:  time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFeedbackCSV(&buf, records, nil))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Time,Career,Impact,Feedback,Suggestion,Weather", lines[0])
	assert.Equal(t,
		`2025-03-10,14:05:09,"Ingenieria de Sistemas","transport","El bus dijo ""no paso""","Más rutas, por favor","28.4°C, Lluvia"`,
		lines[1])
	assert.Equal(t, `2025-03-09,07:00:00,"","health","Mucho calor","Agua",""`, lines[2])

	// Any standards-compliant reader gets the original values back.
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, `El bus dijo "no paso"`, rows[1][4])
	assert.Equal(t, "Más rutas, por favor", rows[1][5])
}

func TestWriteFeedbackCSV_Location(t *testing.T) {
	caracas := time.FixedZone("VET", -4*60*60)
	records := []models.Feedback{{
		Impact:     "outdoor",
		Feedback:   "x",
		Suggestion: "y",
		Timestamp:  time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteFeedbackCSV(&buf, records, caracas))
	assert.Contains(t, buf.String(), "2025-03-09,22:00:00,")
}

func TestWriteFeedbackCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeedbackCSV(&buf, nil, nil))
	assert.Equal(t, "Date,Time,Career,Impact,Feedback,Suggestion,Weather\n", buf.String())
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "feedback-export-2025-03-10.csv", ExportFilename(time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)))
}
