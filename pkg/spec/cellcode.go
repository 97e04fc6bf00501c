package spec

import (
	"fmt"
	"strings"
)

// CellCode is a per-cell train-selection directive, like "28 last" or
// "94 blank" or a bare "59" picking one train out of a slashed column.
type CellCode struct {
	// Train is nil for directives like a bare "first" which apply to
	// whichever train resolution picks.
	Train  *TrainSpec
	First  bool
	Last   bool
	Blank  bool
	TwoRow bool
}

// Arrow names accepted as whole-cell substitutions.
var arrowNames = map[string]bool{
	"downarrow":      true,
	"uparrow":        true,
	"rightarrow":     true,
	"downrightarrow": true,
	"rightdownarrow": true,
	"uprightarrow":   true,
	"rightuparrow":   true,
}

// IsArrowName reports whether a cell holds one of the arrow substitution
// tokens.
func IsArrowName(text string) bool {
	return arrowNames[strings.TrimSpace(text)]
}

// ParseCellCode deciphers cell text against the column's train specs.
// Returns nil with no error when the text is not a train-selection code at
// all (free text, the usual case). Malformed codes -- a first/last/blank
// directive naming a train not in the column -- are a ParseError, never
// silently treated as free text.
func ParseCellCode(text string, trains []TrainSpec) (*CellCode, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	keys := map[string]bool{}
	for _, ts := range trains {
		keys[ts.Key()] = true
	}
	findTrain := func(key string) *TrainSpec {
		for i := range trains {
			if trains[i].Key() == key {
				return &trains[i]
			}
		}
		return nil
	}

	code := &CellCode{}
	for _, suffix := range []string{"two_row", "two-row", "tworow"} {
		if rest, found := strings.CutSuffix(text, suffix); found {
			code.TwoRow = true
			text = strings.TrimSpace(rest)
			break
		}
	}

	switch {
	case strings.HasSuffix(text, "last"):
		rest := strings.TrimSpace(strings.TrimSuffix(text, "last"))
		code.Last = true
		if rest == "" {
			return code, nil
		}
		if !keys[rest] {
			return nil, &ParseError{Message: fmt.Sprintf("train %q in cell code is not in this column", rest)}
		}
		code.Train = findTrain(rest)
		return code, nil

	case strings.HasSuffix(text, "first"):
		rest := strings.TrimSpace(strings.TrimSuffix(text, "first"))
		code.First = true
		if rest == "" {
			return code, nil
		}
		if !keys[rest] {
			return nil, &ParseError{Message: fmt.Sprintf("train %q in cell code is not in this column", rest)}
		}
		code.Train = findTrain(rest)
		return code, nil

	case strings.HasSuffix(text, "blank"):
		// Plain "blank" is a whole-cell substitution handled elsewhere;
		// this is "94 blank", a blank cell carrying that train's styling.
		rest := strings.TrimSpace(strings.TrimSuffix(text, "blank"))
		if rest == "" {
			return nil, nil
		}
		if !keys[rest] {
			return nil, &ParseError{Message: fmt.Sprintf("train %q in cell code is not in this column", rest)}
		}
		code.Blank = true
		code.Train = findTrain(rest)
		return code, nil
	}

	if text == "" && code.TwoRow {
		return code, nil
	}

	// A bare train number selects that train. Any other bare text is free
	// text, not a code.
	if keys[text] {
		code.Train = findTrain(text)
		return code, nil
	}
	if code.TwoRow {
		return nil, &ParseError{Message: fmt.Sprintf("train %q in cell code is not in this column", text)}
	}
	return nil, nil
}
