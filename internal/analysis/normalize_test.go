package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeIsTotal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"strict json", `{"errorCount": 3}`, 3},
		{"json zero", `{"errorCount": 0}`, 0},
		{"json negative clamps", `{"errorCount": -5}`, 0},
		{"json float truncates", `{"errorCount": 2.9}`, 2},
		{"json numeric string", `{"errorCount": "7"}`, 7},
		{"json non-numeric string", `{"errorCount": "many"}`, 0},
		{"json missing field", `{"count": 3}`, 0},
		{"json null field", `{"errorCount": null}`, 0},
		{"json non-object", `[1, 2, 3]`, 0},
		{"bare json number", `3`, 0},
		{"prose with digits", "I found 2 errors.", 2},
		{"prose with negative digits", "score: -4 issues", 0},
		{"prose without digits", "no issues", 0},
		{"json wrapped in prose", `Here you go: {"errorCount": 5}`, 5},
		{"empty string", "", 0},
		{"whitespace", "   \n\t", 0},
		{"bare huge number", strings.Repeat("9", 40), 0},
		{"overflowing digit run in prose", "errors: " + strings.Repeat("9", 40), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			require.Equal(t, tt.want, got.ErrorCount)
			require.GreaterOrEqual(t, got.ErrorCount, 0)
		})
	}
}

func TestNormalizeReportsParsePath(t *testing.T) {
	_, mode := normalize(`{"errorCount": 3}`)
	require.Equal(t, parsedJSON, mode)

	_, mode = normalize("I found 2 errors.")
	require.Equal(t, scannedDigits, mode)

	_, mode = normalize("no issues")
	require.Equal(t, defaultZero, mode)
}
