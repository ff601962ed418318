// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	om := NewOrderedMap()
	require.NoError(t, om.Set("b", intAtom(2)))
	require.NoError(t, om.Set("a", intAtom(1)))
	require.NoError(t, om.Set("c", intAtom(3)))

	require.Equal(t, []string{"b", "a", "c"}, om.Keys())
	require.Equal(t, 3, om.Len())
}

func TestOrderedMapSetDuplicateKeyErrors(t *testing.T) {
	om := NewOrderedMap()
	require.NoError(t, om.Set("x", intAtom(1)))

	err := om.Set("x", intAtom(2))
	require.Error(t, err)
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "x", dup.Key)
}

func TestOrderedMapOverwriteReplacesInPlace(t *testing.T) {
	om := NewOrderedMap()
	om.overwrite("a", intAtom(1))
	om.overwrite("b", intAtom(2))
	om.overwrite("a", intAtom(99))

	require.Equal(t, []string{"a", "b"}, om.Keys())
	v, ok := om.Get("a")
	require.True(t, ok)
	require.Equal(t, int64(99), v.Int)
}

func TestOrderedMapMergeBlock(t *testing.T) {
	inner := NewOrderedMap()
	require.NoError(t, inner.Set("Id", intAtom(1)))
	child := &Atom{Kind: AtomBlock, Block: inner}

	om := NewOrderedMap()
	require.NoError(t, om.merge(child))

	v, ok := om.Get("Id")
	require.True(t, ok)
	require.Equal(t, int64(1), v.Int)
}

func TestOrderedMapMergeIdentStoresNil(t *testing.T) {
	om := NewOrderedMap()
	require.NoError(t, om.merge(identAtom("Exterior")))

	v, ok := om.Get("Exterior")
	require.True(t, ok)
	require.Nil(t, v)
}

func TestOrderedMapMergeDuplicateKeyErrors(t *testing.T) {
	om := NewOrderedMap()
	require.NoError(t, om.merge(identAtom("Exterior")))

	err := om.merge(identAtom("Exterior"))
	require.Error(t, err)
}

func TestNamedAtomWrapsSingleKey(t *testing.T) {
	a, err := namedAtom("define", intAtom(5))
	require.NoError(t, err)
	require.Equal(t, AtomBlock, a.Kind)

	v, ok := a.Block.Get("define")
	require.True(t, ok)
	require.Equal(t, int64(5), v.Int)
}
