// Package input expands command arguments that read values from stdin (-)
// or from a file (@file), one value per line.
package input

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/marcus/mfx/internal/output"
)

// ExpandValues expands arguments that use - (stdin) or @file syntax.
// stdin is read at most once; a repeated - is skipped with a warning.
func ExpandValues(values []string, stdin io.Reader) []string {
	var result []string
	stdinUsed := false
	for _, v := range values {
		switch {
		case v == "-":
			if stdinUsed {
				output.Warning("stdin already used, ignoring additional -")
				continue
			}
			stdinUsed = true
			result = append(result, ReadLines(stdin)...)
		case strings.HasPrefix(v, "@") && len(v) > 1:
			path := v[1:]
			file, err := os.Open(path)
			if err != nil {
				output.Warning("failed to read %s: %v", path, err)
				continue
			}
			result = append(result, ReadLines(file)...)
			file.Close()
		default:
			result = append(result, v)
		}
	}
	return result
}

// ReadLines reads the non-empty trimmed lines of r
func ReadLines(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
