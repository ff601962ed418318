// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

// Matrix3 is an N x 3 matrix of either float32 (Vertices) or int32
// (Triangles) rows, emitted only in HyperSurface context.
type Matrix3 struct {
	IsInt bool
	F     [][3]float32
	I     [][3]int32
}

// Rows returns the number of rows in the matrix.
func (m *Matrix3) Rows() int {
	if m == nil {
		return 0
	}
	if m.IsInt {
		return len(m.I)
	}
	return len(m.F)
}

// LatticeData is the materialized payload of a Bytedata token. Exactly one
// of the binary or ASCII representations is populated, selected by
// IsBinary.
type LatticeData struct {
	IsBinary bool

	// Binary form: a 3-D u8 array, axes already swapped to [x, y, z]
	// order; the on-disk layout is [z, y, x] and the tokenizer transposes
	// it when the payload is read.
	Shape [3]int
	U8    []byte

	// ASCII form: whitespace-separated numeric rows read until a blank
	// line, each element promoted to float64 uniformly (see DESIGN.md).
	Rows [][]float64
}

// At returns the u8 element at logical coordinates [x, y, z].
func (l *LatticeData) At(x, y, z int) byte {
	nx, ny, nz := l.Shape[0], l.Shape[1], l.Shape[2]
	_ = nx
	return l.U8[x*ny*nz+y*nz+z]
}

// Len returns the flattened element count of the binary payload.
func (l *LatticeData) Len() int {
	return len(l.U8)
}
