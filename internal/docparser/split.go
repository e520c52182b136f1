package docparser

import "strings"

// Separator is the line that separates documents.
const Separator = "---"

// Segment is the raw text of one document together with the 1-based line
// of the input on which it starts.
type Segment struct {
	Text string
	Line int
}

// Split cuts text on lines consisting solely of "---". Blank lines at the
// edges of each segment are dropped and segments left empty are skipped.
func Split(text string) []Segment {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var segments []Segment
	start := 0
	flush := func(end int) {
		lo, hi := start, end
		for lo < hi && strings.TrimSpace(lines[lo]) == "" {
			lo++
		}
		for hi > lo && strings.TrimSpace(lines[hi-1]) == "" {
			hi--
		}
		if lo < hi {
			segments = append(segments, Segment{
				Text: strings.Join(lines[lo:hi], "\n") + "\n",
				Line: lo + 1,
			})
		}
	}
	for i, line := range lines {
		if isSeparator(line) {
			flush(i)
			start = i + 1
		}
	}
	flush(len(lines))
	return segments
}

func isSeparator(line string) bool {
	return strings.TrimRight(line, " \t") == Separator
}

// countDocuments reports how many YAML documents text holds, counting
// "--- ..." start markers plus any content that precedes the first one.
func countDocuments(text string) int {
	n := 0
	leading := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "---\t") || strings.TrimRight(line, " \t") == "---" {
			n++
			continue
		}
		trimmed := strings.TrimSpace(line)
		if n == 0 && trimmed != "" && !strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "%") {
			leading = true
		}
	}
	if leading {
		n++
	}
	return n
}
