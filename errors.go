// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import "fmt"

// Position identifies a token's origin in the source for diagnostics.
// Positional fields are not semantically required by consumers but are
// preserved so error messages can point back at the offending bytes.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// ParseError reports an unrecognized token, an unexpected token in
// context, or missing expected punctuation.
type ParseError struct {
	Pos    Position
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("amira: parse error at %s: %s", e.Pos, e.Detail)
}

// DecodeError reports a lattice-payload decoder failure: truncation or a
// malformed compressed/RLE stream.
type DecodeError struct {
	Encoding string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("amira: decode error (%s): %s", e.Encoding, e.Reason)
}

// SizingError reports a bytedata reference that cannot be sized: no
// registered info entry and no usable Lattice define, or a declared size
// that does not match the bytes actually available.
type SizingError struct {
	Detail string
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("amira: sizing error: %s", e.Detail)
}

// DuplicateKeyError reports the same identifier appearing twice within a
// single block.
type DuplicateKeyError struct {
	Key   string
	Block string
}

func (e *DuplicateKeyError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("amira: duplicate key %q", e.Key)
	}
	return fmt.Sprintf("amira: duplicate key %q in block %q", e.Key, e.Block)
}
