// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/scigolib/amira/log"
)

// bytedataEntry is a registered @id declaration: either an explicit
// {encoding, size} pair, or "none" (size deduced from the Lattice define,
// encoding raw).
type bytedataEntry struct {
	hasEncSize bool
	encoding   string
	size       int
}

// tokenizer is the context-sensitive C3 stream: it switches between
// line-oriented text scanning and sized binary-payload extraction based
// on declarations already seen, and carries that state forward across
// calls to Next.
type tokenizer struct {
	buf  []byte
	line int
	done bool

	pending []Token

	// last holds the most recently emitted tokens, most recent last,
	// trimmed to at most 3 entries - the lookback window the Vec3
	// trigger reads.
	last []Token

	tokenCount int

	info        FileInfo
	infoLocked  bool
	warnedUnknownHeader bool

	bytedata map[string]*bytedataEntry
	defines  map[string][]int

	opts   *Options
	logger *log.Helper
}

func newTokenizer(buf []byte, opts *Options, logger *log.Helper) *tokenizer {
	return &tokenizer{
		buf:      buf,
		line:     0,
		bytedata: make(map[string]*bytedataEntry),
		defines:  make(map[string][]int),
		opts:     opts,
		logger:   logger,
	}
}

// addDefines merges the given defines into the tokenizer's define table;
// this is the feedback edge the tree builder uses after finalizing a
// top-level {define: ...} atom so that later bytedata references can
// size themselves against Lattice.
func (t *tokenizer) addDefines(d map[string][]int) {
	for k, v := range d {
		t.defines[k] = v
	}
}

// Next returns the next token in the stream, ending with TokEndMarker.
func (t *tokenizer) Next() (*Token, error) {
	for {
		if len(t.pending) > 0 {
			tok := t.pending[0]
			t.pending = t.pending[1:]
			t.record(tok)
			return &tok, nil
		}
		if t.done {
			tok := Token{Kind: TokEndMarker, Start: Position{t.line, 0}, End: Position{t.line, 0}}
			t.record(tok)
			return &tok, nil
		}
		if len(t.buf) == 0 {
			t.done = true
			continue
		}
		if t.vec3Triggered() {
			tok, err := t.readVec3()
			if err != nil {
				return nil, err
			}
			t.pending = append(t.pending, tok)
			continue
		}
		if err := t.readLine(); err != nil {
			return nil, err
		}
	}
}

// record appends tok to the 3-token lookback window and, if tok is the
// very first token emitted, locks in FileInfo from it.
func (t *tokenizer) record(tok Token) {
	t.last = append(t.last, tok)
	if len(t.last) > 3 {
		t.last = t.last[len(t.last)-3:]
	}

	if t.tokenCount == 0 && !t.infoLocked {
		t.lockHeader(tok)
	}
	t.tokenCount++
}

func (t *tokenizer) lockHeader(tok Token) {
	t.infoLocked = true
	if tok.Kind == TokComment {
		if fi, ok := headerTable[tok.Text]; ok {
			t.info = fi
			return
		}
	}
	t.info = FileInfo{Kind: KindUnknown, IsBinary: t.defaultBinary()}
	if !t.warnedUnknownHeader {
		t.warnedUnknownHeader = true
		if t.logger != nil {
			t.logger.Warnf("unrecognized file header, proceeding with default binary mode = %v", t.info.IsBinary)
		}
	}
}

func (t *tokenizer) defaultBinary() bool {
	if t.opts != nil {
		return t.opts.DefaultBinary
	}
	return false
}

// vec3Triggered reports whether the last three emitted tokens form
// Name(F), Number(n), Newline with F in {Vertices, Triangles}.
func (t *tokenizer) vec3Triggered() bool {
	if len(t.last) != 3 {
		return false
	}
	a, b, c := t.last[0], t.last[1], t.last[2]
	if a.Kind != TokName || (a.Text != "Vertices" && a.Text != "Triangles") {
		return false
	}
	if b.Kind != TokNumber {
		return false
	}
	return c.Kind == TokNewline
}

func (t *tokenizer) readVec3() (Token, error) {
	field := t.last[0].Text
	n, err := strconv.Atoi(t.last[1].Text)
	if err != nil {
		return Token{}, &ParseError{Pos: Position{t.line, 0}, Detail: "invalid vector count for " + field}
	}

	if t.info.Kind != KindHyperSurface {
		return Token{}, &ParseError{Pos: Position{t.line, 0}, Detail: field + " array is only valid in HyperSurface files"}
	}

	isInt := field == "Triangles"
	start := Position{t.line, 0}

	if t.info.IsBinary {
		nBytes := n * 12
		if len(t.buf) < nBytes {
			return Token{}, &ParseError{Pos: start, Detail: "truncated " + field + " binary payload"}
		}
		chunk := t.buf[:nBytes]
		t.buf = t.buf[nBytes:]
		t.line++

		m := &Matrix3{IsInt: isInt}
		if isInt {
			m.I = make([][3]int32, n)
			for i := 0; i < n; i++ {
				for j := 0; j < 3; j++ {
					off := (i*3 + j) * 4
					m.I[i][j] = int32(binary.BigEndian.Uint32(chunk[off : off+4]))
				}
			}
		} else {
			m.F = make([][3]float32, n)
			for i := 0; i < n; i++ {
				for j := 0; j < 3; j++ {
					off := (i*3 + j) * 4
					m.F[i][j] = math.Float32frombits(binary.BigEndian.Uint32(chunk[off : off+4]))
				}
			}
		}
		return Token{Kind: TokVec3Array, Vec3: m, Start: start, End: Position{t.line, nBytes}}, nil
	}

	// ASCII: consume the next n lines.
	m := &Matrix3{IsInt: isInt}
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(t.buf, '\n')
		if idx < 0 {
			return Token{}, &ParseError{Pos: start, Detail: "truncated " + field + " ascii payload"}
		}
		lineBuf := t.buf[:idx]
		t.buf = t.buf[idx+1:]
		t.line++

		fields := strings.Fields(string(lineBuf))
		if len(fields) < 3 {
			return Token{}, &ParseError{Pos: start, Detail: "expected 3 values per " + field + " row"}
		}
		var row [3]float64
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return Token{}, &ParseError{Pos: start, Detail: "invalid numeric value in " + field + " row"}
			}
			row[j] = v
		}
		if isInt {
			m.I = append(m.I, [3]int32{int32(row[0]), int32(row[1]), int32(row[2])})
		} else {
			m.F = append(m.F, [3]float32{float32(row[0]), float32(row[1]), float32(row[2])})
		}
	}
	return Token{Kind: TokVec3Array, Vec3: m, Start: start, End: Position{t.line, 0}}, nil
}

// readLine extracts the next text line from buf and appends the tokens it
// produces to t.pending. Bytedata payload extraction (triggered by a
// column-0 "@id" part) consumes further bytes directly from t.buf, past
// whatever is left of the current line.
func (t *tokenizer) readLine() error {
	idx := bytes.IndexByte(t.buf, '\n')
	if idx < 0 {
		return &ParseError{Pos: Position{t.line, 0}, Detail: "unexpected end of input, missing trailing newline"}
	}
	line := t.buf[:idx]
	t.buf = t.buf[idx+1:]
	t.line++
	lineNo := t.line

	trimmedLeft := bytes.TrimLeft(line, " \t")
	switch {
	case len(trimmedLeft) > 0 && trimmedLeft[0] == '#':
		t.pending = append(t.pending,
			Token{Kind: TokComment, Text: string(line), Start: Position{lineNo, 0}, End: Position{lineNo, len(line)}},
			Token{Kind: TokNewline, Text: "\n", Start: Position{lineNo, len(line)}, End: Position{lineNo, len(line) + 1}},
		)
		return nil
	case len(line) == 0:
		t.pending = append(t.pending, Token{Kind: TokNewline, Text: "\n", Start: Position{lineNo, 0}, End: Position{lineNo, 1}})
		return nil
	}

	parts, cols := splitLine(line)

	// The comma-attached-to-a-value rule applies to the last real part
	// before the synthetic trailing newline marker.
	commaIdx := -1
	if len(parts) >= 2 {
		commaIdx = len(parts) - 2
	}

	for i, part := range parts {
		col := cols[i]

		if i == commaIdx && len(part) > 1 && part[len(part)-1] == ',' {
			stripped := part[:len(part)-1]
			t.pending = append(t.pending, Token{Kind: TokComma, Text: ",", Start: Position{lineNo, col + len(stripped)}, End: Position{lineNo, col + len(part)}})
			part = stripped
		}

		switch {
		case part == "\n":
			t.pending = append(t.pending, Token{Kind: TokNewline, Text: "\n", Start: Position{lineNo, col}, End: Position{lineNo, col + 1}})
		case part == "{":
			t.pending = append(t.pending, Token{Kind: TokOpenBrace, Text: "{", Start: Position{lineNo, col}, End: Position{lineNo, col + 1}})
		case part == "}":
			t.pending = append(t.pending, Token{Kind: TokCloseBrace, Text: "}", Start: Position{lineNo, col}, End: Position{lineNo, col + 1}})
		case part == ":":
			t.pending = append(t.pending, Token{Kind: TokColon, Text: ":", Start: Position{lineNo, col}, End: Position{lineNo, col + 1}})
		case part == "=":
			t.pending = append(t.pending, Token{Kind: TokEquals, Text: "=", Start: Position{lineNo, col}, End: Position{lineNo, col + 1}})
		case part == ",":
			t.pending = append(t.pending, Token{Kind: TokComma, Text: ",", Start: Position{lineNo, col}, End: Position{lineNo, col + 1}})
		case isNumber([]byte(part)):
			t.pending = append(t.pending, Token{Kind: TokNumber, Text: part, Start: Position{lineNo, col}, End: Position{lineNo, col + len(part)}})
		case isName([]byte(part)):
			t.pending = append(t.pending, Token{Kind: TokName, Text: part, Start: Position{lineNo, col}, End: Position{lineNo, col + len(part)}})
		case isStringLiteral([]byte(part)):
			t.pending = append(t.pending, Token{Kind: TokString, Text: part, Start: Position{lineNo, col}, End: Position{lineNo, col + len(part)}})
		default:
			if id, encoding, size, hasEncSize, ok := bytedataInfoMatch([]byte(part)); ok && col != 0 {
				t.bytedata[id] = &bytedataEntry{hasEncSize: hasEncSize, encoding: encoding, size: size}
				t.pending = append(t.pending, Token{
					Kind: TokBytedataInfo,
					Text: part,
					Info: &BytedataInfo{ID: id, Encoding: encoding, Size: size, HasEncSize: hasEncSize},
					Start: Position{lineNo, col}, End: Position{lineNo, col + len(part)},
				})
			} else if isBytedataKey([]byte(part)) {
				id, _, _, _, _ := bytedataInfoMatch([]byte(part))
				tok, err := t.readBytedataPayload(id, lineNo, col)
				if err != nil {
					return err
				}
				t.pending = append(t.pending, tok)
			} else {
				return &ParseError{Pos: Position{lineNo, col}, Detail: "cannot tokenize part " + strconv.Quote(part)}
			}
		}
	}
	return nil
}

// readBytedataPayload implements §4.3 step 4: a column-0 "@id" opens a
// binary or ASCII payload, sized either by a prior BytedataInfo entry or
// by the sole Lattice define.
func (t *tokenizer) readBytedataPayload(id string, lineNo, col int) (Token, error) {
	entry, registered := t.bytedata[id]

	var encoding string
	var size int
	var sizeKnown bool

	switch {
	case registered && entry.hasEncSize:
		encoding, size, sizeKnown = entry.encoding, entry.size, true
	default:
		if len(t.defines) != 1 {
			return Token{}, &SizingError{Detail: "bytedata @" + id + " has no declared size and defines table is not exactly one entry"}
		}
		var dim []int
		for _, v := range t.defines {
			dim = v
			break
		}
		if t.info.IsBinary {
			if len(dim) != 3 {
				return Token{}, &SizingError{Detail: "bytedata @" + id + " sizing define does not have 3 dimensions"}
			}
			encoding = string(EncodingRaw)
			size = dim[0] * dim[1] * dim[2]
			sizeKnown = true
		} else {
			encoding = "ascii"
		}
	}

	if t.info.IsBinary {
		shape, ok := t.defines["Lattice"]
		if !ok || len(shape) != 3 {
			return Token{}, &SizingError{Detail: "bytedata @" + id + " requires a Lattice define for reshaping"}
		}
		if !sizeKnown {
			return Token{}, &SizingError{Detail: "bytedata @" + id + " has no usable size"}
		}
		if len(t.buf) < size {
			return Token{}, &DecodeError{Encoding: encoding, Reason: "declared size exceeds available bytes"}
		}
		raw := t.buf[:size]
		t.buf = t.buf[size:]

		decoded, err := decodePayload(Encoding(encoding), raw)
		if err != nil {
			return Token{}, err
		}

		nx, ny, nz := shape[0], shape[1], shape[2]
		if len(decoded) != nx*ny*nz {
			return Token{}, &DecodeError{Encoding: encoding, Reason: "decoded size does not match Lattice dimensions"}
		}

		// Disk layout is [nz, ny, nx] C-order; transpose explicitly to
		// expose [x, y, z] indexing (the layout LatticeData.At reads).
		out := make([]byte, len(decoded))
		for z := 0; z < nz; z++ {
			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					src := z*ny*nx + y*nx + x
					dst := x*ny*nz + y*nz + z
					out[dst] = decoded[src]
				}
			}
		}

		data := &LatticeData{IsBinary: true, Shape: [3]int{nx, ny, nz}, U8: out}
		return Token{Kind: TokBytedata, Data: data, Start: Position{lineNo, col}, End: Position{lineNo, col}}, nil
	}

	// ASCII mode: whitespace-separated numeric rows until a blank line.
	var rows [][]float64
	for {
		idx := bytes.IndexByte(t.buf, '\n')
		if idx < 0 {
			return Token{}, &ParseError{Pos: Position{lineNo, col}, Detail: "unterminated ascii bytedata block"}
		}
		lineBuf := t.buf[:idx]
		t.buf = t.buf[idx+1:]
		t.line++

		trimmed := bytes.TrimSpace(lineBuf)
		if len(trimmed) == 0 {
			break
		}
		fields := strings.Fields(string(trimmed))
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Token{}, &ParseError{Pos: Position{lineNo, col}, Detail: "invalid numeric value in ascii bytedata"}
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	data := &LatticeData{IsBinary: false, Rows: rows}
	return Token{Kind: TokBytedata, Data: data, Start: Position{lineNo, col}, End: Position{lineNo, col}}, nil
}
