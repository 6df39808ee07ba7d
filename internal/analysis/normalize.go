package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

// parseMode records which path produced a normalized count.
type parseMode int

const (
	parsedJSON parseMode = iota
	scannedDigits
	defaultZero
)

func (m parseMode) String() string {
	switch m {
	case parsedJSON:
		return "json"
	case scannedDigits:
		return "digits"
	default:
		return "default"
	}
}

var digitRun = regexp.MustCompile(`-?\d+`)

// Normalize extracts a non-negative error count from untrusted upstream
// output. It is total: any input, including empty strings, prose, malformed
// JSON, or negative/non-finite values, yields a usable Result.
//
// Primary path: the raw text is a JSON object carrying "errorCount".
// Fallback: the first run of decimal digits in the text.
// Final fallback: zero.
func Normalize(raw string) Result {
	count, _ := normalize(raw)
	return Result{ErrorCount: count}
}

func normalize(raw string) (int, parseMode) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		obj, ok := doc.(map[string]any)
		if !ok {
			// Valid JSON but not an object: no field to read.
			return 0, parsedJSON
		}
		return coerceCount(obj["errorCount"]), parsedJSON
	}

	if m := digitRun.FindString(raw); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			if n < 0 {
				n = 0
			}
			return n, scannedDigits
		}
	}

	return 0, defaultZero
}

// coerceCount turns whatever the upstream put in errorCount into a
// non-negative integer. Non-numbers, negatives, and non-finite values all
// clamp to zero.
func coerceCount(v any) int {
	switch value := v.(type) {
	case float64:
		return clamp(value)
	case string:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return clamp(f)
		}
		return 0
	default:
		return 0
	}
}

func clamp(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(v)
}
