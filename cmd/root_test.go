package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		code      int
		stdout    string
		hasStderr bool
	}{
		{
			name:   "iPhone after iPad",
			input:  `{"devices": {"iOS-17": [{"name":"iPad Air","isAvailable":true,"udid":"A"},{"name":"iPhone 15","isAvailable":true,"udid":"B"}]}}`,
			code:   ExitMatch,
			stdout: "B\n",
		},
		{
			name:  "unavailable iPhone",
			input: `{"devices": {"iOS-17": [{"name":"iPhone 15","isAvailable":false,"udid":"B"}]}}`,
			code:  ExitNoMatch,
		},
		{
			name:   "first runtime wins",
			input:  `{"devices": {"iOS-16": [{"name":"iPhone 14","isAvailable":true,"udid":"C"}], "iOS-17": [{"name":"iPhone 15","isAvailable":true,"udid":"B"}]}}`,
			code:   ExitMatch,
			stdout: "C\n",
		},
		{
			name:      "not json",
			input:     `not json`,
			code:      ExitMalformed,
			hasStderr: true,
		},
		{
			name:  "no devices",
			input: `{"devices": {}}`,
			code:  ExitNoMatch,
		},
		{
			name:      "missing required field",
			input:     `{"devices": {"iOS-17": [{"isAvailable":true,"udid":"A"}]}}`,
			code:      ExitMalformed,
			hasStderr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{}, strings.NewReader(tt.input), &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.stdout, stdout.String())
			if tt.hasStderr {
				assert.Contains(t, stderr.String(), `"event":"find_simulator"`)
				assert.Contains(t, stderr.String(), `"level":"error"`)
			} else {
				assert.Empty(t, stderr.String())
			}
		})
	}
}

func TestRunRejectsArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"iPhone"}, strings.NewReader(`{"devices": {}}`), &stdout, &stderr)

	assert.Equal(t, ExitMalformed, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "unknown command")
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--help"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, ExitMatch, code)
	assert.Contains(t, stdout.String(), "find-simulator")
}
