// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import "regexp"

// Lexical recognizers, each matching the entire candidate slice (not a
// prefix). These mirror the part-classification rules the tokenizer
// applies to each whitespace-delimited piece of a non-comment, non-blank
// line.
var (
	reStringLiteral = regexp.MustCompile(`^".*"$`)
	reBytedataInfo  = regexp.MustCompile(`^@(\d+)(\((\w+),(\d+)\))?$`)
	reBytedataKey   = regexp.MustCompile(`^@(\d+)$`)
	reNumber        = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	reName          = regexp.MustCompile(`^[A-Za-z0-9_]+(\[\d\])?$`)
)

func isStringLiteral(b []byte) bool { return reStringLiteral.Match(b) }
func isBytedataKey(b []byte) bool   { return reBytedataKey.Match(b) }
func isNumber(b []byte) bool        { return reNumber.Match(b) }
func isName(b []byte) bool          { return reName.Match(b) }

// bytedataInfoMatch reports whether b is a bytedata-info part and, if so,
// returns its id and, when present, its declared encoding and size.
func bytedataInfoMatch(b []byte) (id string, encoding string, size int, hasEncSize bool, ok bool) {
	m := reBytedataInfo.FindSubmatch(b)
	if m == nil {
		return "", "", 0, false, false
	}
	id = string(m[1])
	if len(m[3]) > 0 {
		encoding = string(m[3])
		size = atoiMust(string(m[4]))
		hasEncSize = true
	}
	return id, encoding, size, hasEncSize, true
}

// splitLine splits a single non-comment source line into whitespace
// delimited parts, with one exception: a double-quoted string literal is
// kept intact (including any embedded whitespace) by treating the span
// from the first to the last '"' byte on the line as one part. A literal
// "\n" marker is always appended as the final part, and its column is the
// line's length (one past the last real byte).
//
// cols[i] gives the starting byte column of parts[i] within line.
func splitLine(line []byte) (parts []string, cols []int) {
	first, last := -1, -1
	for i, b := range line {
		if b == '"' {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	appendFields := func(seg []byte, base int) {
		i := 0
		for i < len(seg) {
			for i < len(seg) && (seg[i] == ' ' || seg[i] == '\t') {
				i++
			}
			if i >= len(seg) {
				break
			}
			start := i
			for i < len(seg) && seg[i] != ' ' && seg[i] != '\t' {
				i++
			}
			parts = append(parts, string(seg[start:i]))
			cols = append(cols, base+start)
		}
	}

	if first >= 0 && last > first {
		appendFields(line[:first], 0)
		parts = append(parts, string(line[first:last+1]))
		cols = append(cols, first)
		appendFields(line[last+1:], last+1)
	} else {
		appendFields(line, 0)
	}

	parts = append(parts, "\n")
	cols = append(cols, len(line))
	return parts, cols
}
