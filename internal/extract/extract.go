// Package extract recovers test documents embedded in a leading block
// comment of a source file.
//
// A file carries specs when it starts with "/*". Decoration right after the
// opener (newlines, '*', '-', whitespace) is skipped, then everything up to
// the closer "**/" is the documentation block. The block is split into
// documents on "---" lines and each document is parsed with docparser.
package extract

import (
	"strings"

	"github.com/AndreyAkinshin/specoracle/internal/docparser"
	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
)

const (
	opener = "/*"
	closer = "**/"
	bom    = "\uFEFF"
)

type state int

const (
	awaitOpen state = iota
	skipDecoration
	inContent
	awaitClose1
	awaitClose2
)

// Block is the documentation block found in a file.
type Block struct {
	Text       string // content between the decoration and the closer
	Line       int    // 1-based file line on which Text starts
	Terminated bool   // whether the closer was found
}

// Scan runs the scanner over text. ok is false when text does not start
// with a block comment.
func Scan(text string) (b Block, ok bool) {
	text = strings.TrimPrefix(text, bom)

	var (
		st      = awaitOpen
		content strings.Builder
		start   = -1
		stars   = 0
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch st {
		case awaitOpen:
			if !strings.HasPrefix(text, opener) {
				return Block{}, false
			}
			i += len(opener) - 1
			st = skipDecoration
		case skipDecoration:
			if strings.HasPrefix(text[i:], closer) {
				return Block{Line: lineAt(text, i), Terminated: true}, true
			}
			if isDecoration(c) {
				continue
			}
			start = i
			st = inContent
			i--
		case inContent:
			if c == '*' {
				st, stars = awaitClose1, 1
				continue
			}
			content.WriteByte(c)
		case awaitClose1:
			if c == '*' {
				st, stars = awaitClose2, 2
				continue
			}
			content.WriteByte('*')
			st, stars = inContent, 0
			i--
		case awaitClose2:
			// A longer run of stars before the slash ("***/") is all closer.
			switch c {
			case '/':
				return Block{Text: content.String(), Line: lineAt(text, start), Terminated: true}, true
			case '*':
				stars++
			default:
				content.WriteString(strings.Repeat("*", stars))
				st, stars = inContent, 0
				i--
			}
		}
	}

	if st == awaitOpen {
		return Block{}, false
	}
	content.WriteString(strings.Repeat("*", stars))
	if start < 0 {
		start = len(text)
	}
	return Block{Text: content.String(), Line: lineAt(text, start)}, true
}

func isDecoration(c byte) bool {
	switch c {
	case '\n', '\r', '*', '-', ' ', '\t', '\f', '\v':
		return true
	}
	return false
}

func lineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}

// ExtractRaw returns the raw document strings of the documentation block,
// with Line numbers relative to the whole file.
func ExtractRaw(text string) ([]docparser.Segment, Block) {
	b, ok := Scan(text)
	if !ok {
		return nil, b
	}
	segments := docparser.Split(b.Text)
	for i := range segments {
		segments[i].Line += b.Line - 1
	}
	return segments, b
}

// Result is the outcome of extracting one file.
type Result struct {
	docparser.Result
	Block Block
}

// Extract extracts and parses every document embedded in text.
//
// A file without a leading block comment yields an empty result. An
// unterminated comment still yields its documents; the missing closer is
// reported as an extraction error alongside any parse errors.
func Extract(text string) Result {
	segments, b := ExtractRaw(text)
	res := Result{Block: b}
	if len(segments) > 0 {
		res.Result = docparser.ParseSegments(segments)
	}
	if b.Text != "" && !b.Terminated {
		res.Errors = append(res.Errors,
			oerrors.Extraction("unterminated documentation comment (missing \"**/\")").At("", 0, b.Line))
	}
	return res
}
