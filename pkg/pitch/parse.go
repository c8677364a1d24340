package pitch

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parsePitchTable reads the extractor's textual output: one header line,
// then one whitespace-separated row per analysis frame whose first two
// numeric columns are (voicing, pitch). The textual ark format closes the
// matrix with a lone "]" token, which is ignored.
func parsePitchTable(path string) (*Trace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewExtractorError(ErrCodeOutputParse, "",
			fmt.Sprintf("pitch output %s missing", path), err)
	}
	defer file.Close()

	trace := &Trace{}
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			// header row, carries the recording identifier
			continue
		}

		fields := splitRow(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, NewExtractorError(ErrCodeOutputParse, "",
				fmt.Sprintf("malformed pitch output %s: line %d has %d columns, want 2", path, line, len(fields)), nil)
		}

		pov, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, NewExtractorError(ErrCodeOutputParse, "",
				fmt.Sprintf("malformed pitch output %s: line %d: bad voicing value %q", path, line, fields[0]), err)
		}
		hz, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, NewExtractorError(ErrCodeOutputParse, "",
				fmt.Sprintf("malformed pitch output %s: line %d: bad pitch value %q", path, line, fields[1]), err)
		}

		trace.POV = append(trace.POV, pov)
		trace.Pitch = append(trace.Pitch, hz)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewExtractorError(ErrCodeOutputParse, "",
			fmt.Sprintf("failed to read pitch output %s", path), err)
	}

	return trace, nil
}

// splitRow splits a row into fields, dropping the ark matrix delimiters.
func splitRow(s string) []string {
	var fields []string
	for _, f := range strings.Fields(s) {
		if f != "[" && f != "]" {
			fields = append(fields, f)
		}
	}
	return fields
}
