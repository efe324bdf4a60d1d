package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edhtail/internal/model"
)

func intp(n int) *int { return &n }

func sampleResults() []model.FetchResult {
	return []model.FetchResult{
		{Name: "Chander", EDHRECURL: "https://edhrec.com/commanders/chander", Decks: intp(3)},
		{Name: "Eriette", EDHRECURL: "https://edhrec.com/commanders/eriette", Decks: intp(12)},
		{Name: "Lost One", EDHRECURL: "https://edhrec.com/route/?cc=Lost+One"},
		{Name: "Broken One", EDHRECURL: "https://edhrec.com/route/?cc=Broken+One", Err: "connection refused"},
	}
}

func TestDisplay_DropsMissingCountsByDefault(t *testing.T) {
	t.Parallel()

	got := Display(sampleResults(), Options{BottomK: 4})
	require.Len(t, got, 2)
	assert.Equal(t, "Chander", got[0].Name)
	assert.Equal(t, "Eriette", got[1].Name)
}

func TestDisplay_IncludeErrorsKeepsEverything(t *testing.T) {
	t.Parallel()

	got := Display(sampleResults(), Options{BottomK: 4, IncludeErrors: true})
	assert.Len(t, got, 4)
}

func TestConsole_Rendering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Console(&buf, sampleResults(), Options{BottomK: 4, IncludeErrors: true})
	out := buf.String()

	assert.Contains(t, out, "Least-popular commanders")
	assert.Contains(t, out, "(Bottom 4;")
	assert.Contains(t, out, "3  —  Chander  —  https://edhrec.com/commanders/chander")
	// Unknown count renders as the placeholder with no error tail.
	assert.Contains(t, out, "?  —  Lost One  —  https://edhrec.com/route/?cc=Lost+One\n")
	// Errored result carries the error tail when errors are included.
	assert.Contains(t, out, "?  —  Broken One  —  https://edhrec.com/route/?cc=Broken+One — ERROR: connection refused")
}

func TestConsole_ExcludesMissingWithoutIncludeErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Console(&buf, sampleResults(), Options{BottomK: 4})
	out := buf.String()

	assert.NotContains(t, out, "Lost One")
	assert.NotContains(t, out, "Broken One")
	assert.NotContains(t, out, "ERROR")
}

func TestConsole_EmptyResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Console(&buf, nil, Options{BottomK: 20})
	assert.Contains(t, buf.String(), "Least-popular commanders")
	assert.NotContains(t, buf.String(), "(Bottom")
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteCSV(&buf, sampleResults(), Options{BottomK: 4, IncludeErrors: true})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"decks", "name", "edhrec_url", "error"}, rows[0])
	assert.Equal(t, []string{"3", "Chander", "https://edhrec.com/commanders/chander", ""}, rows[1])
	// Missing counts render as empty cells, not placeholders.
	assert.Equal(t, "", rows[3][0])
	assert.Equal(t, "connection refused", rows[4][3])
}

func TestCSV_WritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	err := CSV(path, sampleResults(), Options{BottomK: 4})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "decks,name,edhrec_url,error")
	assert.Contains(t, string(data), "Chander")
	assert.NotContains(t, string(data), "Broken One")
}
