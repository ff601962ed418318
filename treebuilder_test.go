// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseTopLevel(t *testing.T, src string, opts *Options) ([]*Atom, *tokenizer) {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}
	tok := newTokenizer([]byte(src), opts, opts.helper())
	b := newBuilder(tok, opts)
	atoms, err := b.top(opts.MaxTopLevelAtoms)
	require.NoError(t, err)
	return atoms, tok
}

func TestBuilderSimpleScalarAtom(t *testing.T) {
	atoms, _ := parseTopLevel(t, "# HyperSurface 0.1 ASCII\nCount 7\n", nil)
	require.Len(t, atoms, 1)
	require.Equal(t, AtomBlock, atoms[0].Kind)

	v, ok := atoms[0].Block.Get("Count")
	require.True(t, ok)
	require.Equal(t, int64(7), v.Int)
}

func TestBuilderMultiElementList(t *testing.T) {
	atoms, _ := parseTopLevel(t, "# HyperSurface 0.1 ASCII\nBoundingBox 0 0 0 1 1 1\n", nil)
	require.Len(t, atoms, 1)

	v, ok := atoms[0].Block.Get("BoundingBox")
	require.True(t, ok)
	require.Equal(t, AtomList, v.Kind)
	require.Len(t, v.List, 6)
}

func TestBuilderNestedBlock(t *testing.T) {
	src := "# HyperSurface 0.1 ASCII\nParameters {\n    Content \"x\"\n}\n"
	atoms, _ := parseTopLevel(t, src, nil)
	require.Len(t, atoms, 1)

	params, ok := atoms[0].Block.Get("Parameters")
	require.True(t, ok)
	require.Equal(t, AtomBlock, params.Kind)

	content, ok := params.Block.Get("Content")
	require.True(t, ok)
	require.Equal(t, AtomString, content.Kind)
	require.Equal(t, `"x"`, content.Str)
}

func TestBuilderBareIdentifierInBlock(t *testing.T) {
	src := "# HyperSurface 0.1 ASCII\nMaterials {\n    Exterior\n}\n"
	atoms, _ := parseTopLevel(t, src, nil)

	materials, ok := atoms[0].Block.Get("Materials")
	require.True(t, ok)

	v, ok := materials.Block.Get("Exterior")
	require.True(t, ok)
	require.Nil(t, v)
}

func TestBuilderDefineFeedback(t *testing.T) {
	src := "# AmiraMesh BINARY-LITTLE-ENDIAN 2.1\ndefine Lattice 50 50 50\n"
	atoms, tok := parseTopLevel(t, src, nil)
	require.Len(t, atoms, 1)

	defineBlock, ok := atoms[0].Block.Get("define")
	require.True(t, ok)
	lattice, ok := defineBlock.Block.Get("Lattice")
	require.True(t, ok)
	require.Equal(t, AtomList, lattice.Kind)
	require.Len(t, lattice.List, 3)

	require.Equal(t, []int{50, 50, 50}, tok.defines["Lattice"])
}

func TestBuilderVerticesAtom(t *testing.T) {
	src := "# HyperSurface 0.1 ASCII\nVertices 2\n1 2 3\n4 5 6\n"
	atoms, _ := parseTopLevel(t, src, nil)
	require.Len(t, atoms, 1)

	v, ok := atoms[0].Block.Get("Vertices")
	require.True(t, ok)
	require.Equal(t, AtomVertices, v.Kind)
	require.Len(t, v.Matrix.F, 2)
}

func TestBuilderDuplicateKeyInBlockErrors(t *testing.T) {
	src := "# HyperSurface 0.1 ASCII\nBlk {\n    A 1\n    A 2\n}\n"
	opts := &Options{}
	tok := newTokenizer([]byte(src), opts, nil)
	b := newBuilder(tok, opts)
	_, err := b.top(0)
	require.Error(t, err)
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
}
