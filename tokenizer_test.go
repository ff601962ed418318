// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func drainTokens(t *testing.T, tok *tokenizer) []Token {
	t.Helper()
	var out []Token
	for {
		tk, err := tok.Next()
		require.NoError(t, err)
		out = append(out, *tk)
		if tk.Kind == TokEndMarker {
			return out
		}
	}
}

func TestTokenizerRecognizesHeader(t *testing.T) {
	src := []byte("# HyperSurface 0.1 ASCII\n")
	tok := newTokenizer(src, &Options{}, nil)
	toks := drainTokens(t, tok)

	require.Equal(t, TokComment, toks[0].Kind)
	require.Equal(t, KindHyperSurface, tok.info.Kind)
	require.False(t, tok.info.IsBinary)
}

func TestTokenizerUnknownHeaderFallsBackToDefault(t *testing.T) {
	src := []byte("garbage first line\n")
	tok := newTokenizer(src, &Options{DefaultBinary: true}, nil)
	_ = drainTokens(t, tok)

	require.Equal(t, KindUnknown, tok.info.Kind)
	require.True(t, tok.info.IsBinary)
}

func TestTokenizerBasicLine(t *testing.T) {
	src := []byte("# HyperSurface 0.1 ASCII\nfoo 42\n")
	tok := newTokenizer(src, &Options{}, nil)
	toks := drainTokens(t, tok)

	// comment, newline, Name(foo), Number(42), newline, EndMarker
	require.Equal(t, TokComment, toks[0].Kind)
	require.Equal(t, TokNewline, toks[1].Kind)
	require.Equal(t, TokName, toks[2].Kind)
	require.Equal(t, "foo", toks[2].Text)
	require.Equal(t, TokNumber, toks[3].Kind)
	require.Equal(t, "42", toks[3].Text)
	require.Equal(t, TokNewline, toks[4].Kind)
	require.Equal(t, TokEndMarker, toks[5].Kind)
}

func TestTokenizerQuotedString(t *testing.T) {
	src := []byte("# HyperSurface 0.1 ASCII\nContent \"hello, world\"\n")
	tok := newTokenizer(src, &Options{}, nil)
	toks := drainTokens(t, tok)

	var found bool
	for _, tk := range toks {
		if tk.Kind == TokString {
			require.Equal(t, `"hello, world"`, tk.Text)
			found = true
		}
	}
	require.True(t, found)
}

func TestTokenizerTrailingCommaSplitsIntoComma(t *testing.T) {
	src := []byte("# HyperSurface 0.1 ASCII\nfoo 1 2,\n")
	tok := newTokenizer(src, &Options{}, nil)
	toks := drainTokens(t, tok)

	var kinds []TokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Contains(t, kinds, TokComma)
}

func TestTokenizerVec3ArrayASCII(t *testing.T) {
	src := []byte("# HyperSurface 0.1 ASCII\nVertices 2\n1 2 3\n4 5 6\n")
	tok := newTokenizer(src, &Options{}, nil)
	toks := drainTokens(t, tok)

	var vec *Matrix3
	for i := range toks {
		if toks[i].Kind == TokVec3Array {
			vec = toks[i].Vec3
		}
	}
	require.NotNil(t, vec)
	require.False(t, vec.IsInt)
	require.Len(t, vec.F, 2)
	require.Equal(t, [3]float32{1, 2, 3}, vec.F[0])
	require.Equal(t, [3]float32{4, 5, 6}, vec.F[1])
}

func TestTokenizerVec3ArrayBinary(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("# HyperSurface 0.1 BINARY\nVertices 1\n")
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[0:4], math.Float32bits(1.5))
	binary.BigEndian.PutUint32(raw[4:8], math.Float32bits(-2.5))
	binary.BigEndian.PutUint32(raw[8:12], math.Float32bits(3.0))
	buf.Write(raw[:])

	tok := newTokenizer(buf.Bytes(), &Options{}, nil)
	toks := drainTokens(t, tok)

	var vec *Matrix3
	for i := range toks {
		if toks[i].Kind == TokVec3Array {
			vec = toks[i].Vec3
		}
	}
	require.NotNil(t, vec)
	require.Len(t, vec.F, 1)
	require.InDelta(t, 1.5, vec.F[0][0], 0.0001)
	require.InDelta(t, -2.5, vec.F[0][1], 0.0001)
	require.InDelta(t, 3.0, vec.F[0][2], 0.0001)
}

func TestTokenizerBytedataRawPayload(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("# AmiraMesh BINARY-LITTLE-ENDIAN 2.1\n")
	buf.WriteString("define Lattice 2 1 1\n")
	buf.WriteString("Lattice { byte Data } @1\n")
	buf.WriteString("@1\n")
	buf.Write([]byte{10, 20})

	tok := newTokenizer(buf.Bytes(), &Options{}, nil)
	tok.addDefines(map[string][]int{"Lattice": {2, 1, 1}})

	var data *LatticeData
	for {
		tkn, err := tok.Next()
		require.NoError(t, err)
		if tkn.Kind == TokBytedata {
			data = tkn.Data
		}
		if tkn.Kind == TokEndMarker {
			break
		}
	}
	require.NotNil(t, data)
	require.True(t, data.IsBinary)
	require.Equal(t, [3]int{2, 1, 1}, data.Shape)
	require.Equal(t, []byte{10, 20}, data.U8)
}
