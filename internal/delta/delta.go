// Package delta implements the wire contract for incremental text edits:
// a single contiguous range replacement as reported by the editing widget.
// Deltas are ephemeral; they are relayed, applied and discarded, never
// stored.
package delta

import "strings"

// Range addresses a span of text with 1-based line and column numbers,
// matching how the editor widget reports changes. An empty range
// (start == end) is an insertion point.
//
// Columns index bytes within the line. The editor widget counts UTF-16
// code units, which agrees with bytes only for ASCII content; lines with
// multibyte characters can splice mid-rune until columns are converted
// at the widget boundary.
type Range struct {
	StartLine int `json:"startLineNumber"`
	StartCol  int `json:"startColumn"`
	EndLine   int `json:"endLineNumber"`
	EndCol    int `json:"endColumn"`
}

// Change is one range replacement. A batch of changes applies in array
// order, each against the result of the previous; callers must not reorder.
type Change struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

// Apply splices each change into src in order and returns the result.
//
// Per change: split src into lines, extend with empty lines if the end line
// is past the current line count (the sender's buffer may be briefly ahead
// of this mirror), then replace lines [StartLine, EndLine] with
// prefix + Text + suffix, where prefix is the start line before StartCol
// and suffix is the end line from EndCol on.
func Apply(src string, changes []Change) string {
	for _, change := range changes {
		src = applyOne(src, change)
	}
	return src
}

func applyOne(src string, c Change) string {
	lines := strings.Split(src, "\n")
	for len(lines) < c.Range.EndLine {
		lines = append(lines, "")
	}

	startLine := lines[c.Range.StartLine-1]
	endLine := lines[c.Range.EndLine-1]

	prefix := startLine[:clamp(c.Range.StartCol-1, len(startLine))]
	suffix := endLine[clamp(c.Range.EndCol-1, len(endLine)):]

	replacement := strings.Split(prefix+c.Text+suffix, "\n")

	spliced := make([]string, 0, len(lines)-(c.Range.EndLine-c.Range.StartLine+1)+len(replacement))
	spliced = append(spliced, lines[:c.Range.StartLine-1]...)
	spliced = append(spliced, replacement...)
	spliced = append(spliced, lines[c.Range.EndLine:]...)
	return strings.Join(spliced, "\n")
}

// Invert returns the change that undoes c once c has been applied to src:
// its range covers the inserted text and its text is what c replaced.
func Invert(src string, c Change) Change {
	lines := strings.Split(src, "\n")
	for len(lines) < c.Range.EndLine {
		lines = append(lines, "")
	}

	startLine := lines[c.Range.StartLine-1]
	endLine := lines[c.Range.EndLine-1]
	startCol := clamp(c.Range.StartCol-1, len(startLine))
	endCol := clamp(c.Range.EndCol-1, len(endLine))

	var replaced strings.Builder
	if c.Range.StartLine == c.Range.EndLine {
		replaced.WriteString(startLine[startCol:endCol])
	} else {
		replaced.WriteString(startLine[startCol:])
		for i := c.Range.StartLine; i < c.Range.EndLine-1; i++ {
			replaced.WriteString("\n")
			replaced.WriteString(lines[i])
		}
		replaced.WriteString("\n")
		replaced.WriteString(endLine[:endCol])
	}

	inserted := strings.Split(c.Text, "\n")
	endOfInsert := Range{
		StartLine: c.Range.StartLine,
		StartCol:  c.Range.StartCol,
	}
	if len(inserted) == 1 {
		endOfInsert.EndLine = c.Range.StartLine
		endOfInsert.EndCol = c.Range.StartCol + len(inserted[0])
	} else {
		endOfInsert.EndLine = c.Range.StartLine + len(inserted) - 1
		endOfInsert.EndCol = len(inserted[len(inserted)-1]) + 1
	}

	return Change{Range: endOfInsert, Text: replaced.String()}
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
