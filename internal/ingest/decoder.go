package ingest

import "strings"

// candidate delimiters, scored against the first lines of the input.
var delimiters = []string{",", ";", "\t", "|"}

// sampleLines bounds how many non-blank lines delimiter detection inspects.
const sampleLines = 10

// Decode splits raw statement text into rows of cells, autodetecting the
// field delimiter. Ragged rows are passed through as-is; completely empty
// input yields an empty result, never an error.
func Decode(text string) [][]string {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	delim := detectDelimiter(lines)

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(line, delim)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	return rows
}

// splitLines returns the non-blank lines of text, handling both \n and \r\n.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// detectDelimiter scores each candidate over the first sampleLines lines:
// a point per line that splits into more than one column, plus a bonus for
// column-count consistency across lines. Ties and degenerate input fall
// back to comma.
func detectDelimiter(lines []string) string {
	sample := lines
	if len(sample) > sampleLines {
		sample = sample[:sampleLines]
	}

	best := ","
	bestScore := -1

	for _, delim := range delimiters {
		score := scoreDelimiter(sample, delim)
		if score > bestScore {
			best, bestScore = delim, score
		}
	}

	if bestScore <= 0 {
		return ","
	}
	return best
}

func scoreDelimiter(lines []string, delim string) int {
	counts := make(map[int]int)
	score := 0

	for _, line := range lines {
		cols := len(strings.Split(line, delim))
		if cols > 1 {
			score++
			counts[cols]++
		}
	}

	// consistency bonus: how many multi-column lines share the modal width
	modal := 0
	for _, n := range counts {
		if n > modal {
			modal = n
		}
	}
	return score + modal
}
