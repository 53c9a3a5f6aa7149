// Package scanner extracts placeholder and reference tokens from XML-shaped
// text. It never touches the database and never mutates its input; it is a
// pure, textual pass over the document.
package scanner

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPlaceholder is returned when a match structurally resembles a
// placeholder or a reference body but one of its segments is empty, or when
// a REF:{...} body has the two-colon shape but fails the placeholder grammar.
var ErrInvalidPlaceholder = errors.New("scanner: invalid placeholder")

// PKMatch is one occurrence of a PK placeholder: the full placeholder string
// plus the tag fragment it was found in.
type PKMatch struct {
	Placeholder string
	Fragment    string
}

// FKMatch is the first occurrence of a reference string and the placeholder
// it targets.
type FKMatch struct {
	RefString   string
	Placeholder string
}

// Result holds the two insertion-ordered maps produced by Scan.
type Result struct {
	// PKOrder preserves first-seen order of distinct PK placeholders.
	PKOrder []string
	// PKFragments maps a placeholder to every element fragment it appeared in,
	// in occurrence order.
	PKFragments map[string][]string

	// FKOrder preserves first-seen order of distinct reference strings.
	FKOrder []string
	// FKTargets maps a reference string to the placeholder it targets.
	FKTargets map[string]string
}

func newResult() *Result {
	return &Result{
		PKFragments: make(map[string][]string),
		FKTargets:   make(map[string]string),
	}
}

// tagPattern matches a simple, non-nested opening or self-closing XML tag.
// It deliberately does not attempt to parse well-formed XML: closing tags
// and text nodes are irrelevant to placeholder discovery.
var tagPattern = regexp.MustCompile(`<[^<>]*>`)

// attrPattern matches a single `name="value"` pair inside a tag's text.
// Names are matched case-insensitively by construction (the charset covers
// both cases); only the value is inspected further.
var attrPattern = regexp.MustCompile(`(?i)[A-Za-z_:][-A-Za-z0-9_:.]*\s*=\s*"([^"]*)"`)

// referenceWrapper recognizes the REF:{...} shape. A value that does not
// match this at all (missing close-brace, nested braces) is simply not a
// reference and is ignored rather than treated as malformed. Whitespace in
// the body is left to the strict body parse, which rejects it.
var referenceWrapper = regexp.MustCompile(`^REF:\{([^{}]*)\}$`)

// segmentPattern is Segment from the placeholder grammar: [A-Za-z0-9_]+.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Scan performs the single textual pass described by the engine's scanning
// phase, returning both the PK and FK maps. It returns ErrInvalidPlaceholder
// if a candidate structurally resembles a placeholder (or reference body)
// but carries an empty segment, or if a reference body fails the grammar.
func Scan(text string) (*Result, error) {
	result := newResult()

	for _, tag := range tagPattern.FindAllString(text, -1) {
		for _, attrMatch := range attrPattern.FindAllStringSubmatch(tag, -1) {
			value := attrMatch[1]

			if ref := referenceWrapper.FindStringSubmatch(value); ref != nil {
				inner := ref[1]
				placeholder, ok, err := parsePlaceholderBody(inner, true)
				if err != nil {
					return nil, err
				}
				if !ok {
					// Wrapper matched but body isn't a recognizable placeholder
					// shape at all (e.g. wrong char class); per the PK rule this
					// is a plain non-match, not an error.
					continue
				}
				if _, seen := result.FKTargets[value]; !seen {
					result.FKOrder = append(result.FKOrder, value)
					result.FKTargets[value] = placeholder
				}
				continue
			}

			placeholder, ok, err := parsePlaceholderBody(value, false)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			if _, seen := result.PKFragments[placeholder]; !seen {
				result.PKOrder = append(result.PKOrder, placeholder)
			}
			result.PKFragments[placeholder] = append(result.PKFragments[placeholder], tag)
		}
	}

	return result, nil
}

// parsePlaceholderBody classifies a candidate string against the
// Segment:Segment:LogicalId grammar.
//
// It returns (placeholder, true, nil) on a clean match, (_, false, nil) when
// the candidate simply isn't shaped like a placeholder (wrong number of
// colons, invalid segment characters) and should be silently ignored, and
// (_, _, ErrInvalidPlaceholder) when the candidate has exactly the two-colon
// shape but carries an empty segment.
//
// strict controls whether a "looks two-colon-shaped but a segment fails the
// character class" candidate is still reported as an error: FK reference
// bodies are parsed strictly (the REF:{...} wrapper already committed us to
// expecting a placeholder), PK candidates are parsed permissively.
func parsePlaceholderBody(value string, strict bool) (placeholder string, ok bool, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return "", false, nil
	}

	table, column, logicalID := parts[0], parts[1], parts[2]

	if table == "" || column == "" || logicalID == "" {
		return "", false, ErrInvalidPlaceholder
	}

	if !segmentPattern.MatchString(table) || !segmentPattern.MatchString(column) {
		if strict {
			return "", false, ErrInvalidPlaceholder
		}
		return "", false, nil
	}

	// LogicalId forbids whitespace and colons; colons are already excluded by
	// the 3-way split above, and the value never contains a quote since it was
	// captured from inside a quoted attribute.
	if strings.ContainsAny(logicalID, " \t\r\n") {
		if strict {
			return "", false, ErrInvalidPlaceholder
		}
		return "", false, nil
	}

	return value, true, nil
}
