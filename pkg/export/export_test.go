package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Name", "Age"},
		Rows: []map[string]string{
			{"Name": "Mia Chen", "Age": "7"},
			{"Name": "Leo Park"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestRenderCSV(t *testing.T) {
	out, err := NewRenderer().Render(FormatCSV, sampleDataset(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Name,Age\nMia Chen,7\nLeo Park,\n", string(out))

	data := Dataset{
		Headers: []string{"Name", "Diagnosis", "Goals"},
		Rows: []map[string]string{
			{"Name": "=HYPERLINK(\"http://x\")", "Diagnosis": "+ASD", "Goals": "-Read; @Write"},
			{"Name": "Ana Lee", "Diagnosis": "a=b", "Goals": "Read"},
		},
	}
	out, err = NewRenderer().Render(FormatCSV, data, "")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"'=HYPERLINK(\"http://x\")", "'+ASD", "'-Read; @Write"}, records[1])
	assert.Equal(t, []string{"Ana Lee", "a=b", "Read"}, records[2])
}

func TestRenderPDF(t *testing.T) {
	out, err := NewRenderer().Render(FormatPDF, sampleDataset(), "Caseload")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewRenderer().Render(FormatCSV, Dataset{}, "")
	assert.Error(t, err)
	_, err = NewRenderer().Render(FormatPDF, Dataset{}, "")
	assert.Error(t, err)
}
