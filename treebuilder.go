// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import "strconv"

// endKind records why a sub-atom parse stopped, so the caller can decide
// whether it must still fetch its own next token or whether the
// terminating token (a bare newline, or a block's closing '}') was
// already consumed on its behalf.
type endKind int

const (
	endNone endKind = iota
	endNewline
	endBlock
)

// builder drives the tokenizer and folds its token stream into a tree of
// Atoms, mirroring the original reader's mutually recursive atom()/top()
// functions: every call pulls exactly the tokens it needs, never more,
// and never peeks. It is not reentrant: a single builder parses exactly
// one document.
type builder struct {
	tok  *tokenizer
	opts *Options
}

func newBuilder(tok *tokenizer, opts *Options) *builder {
	return &builder{tok: tok, opts: opts}
}

func (b *builder) next() (*Token, error) {
	return b.tok.Next()
}

// top parses the document's top-level sequence of atoms until EndMarker,
// returning them as a list in source order. Any top-level {define: ...}
// atom is fed back into the tokenizer immediately, the same feedback
// edge the original reader's add_defines call provides.
func (b *builder) top(maxAtoms int) ([]*Atom, error) {
	var atoms []*Atom

	tok, err := b.next()
	if err != nil {
		return nil, err
	}

	for tok.Kind != TokEndMarker {
		a, _, err := b.atomFrom(tok, false)
		if err != nil {
			return nil, err
		}
		if a != nil {
			if maxAtoms > 0 && len(atoms) >= maxAtoms {
				return nil, &ParseError{Pos: tok.Start, Detail: "top-level atom count exceeds configured maximum"}
			}
			atoms = append(atoms, a)
			if defs, ok := defineAtom(a); ok {
				b.tok.addDefines(defs)
			}
		}

		tok, err = b.next()
		if err != nil {
			return nil, err
		}
	}
	return atoms, nil
}

// defineAtom reports whether a is a top-level {define: {...}} block and,
// if so, extracts its numeric-list entries for tokenizer feedback.
func defineAtom(a *Atom) (map[string][]int, bool) {
	if a.Kind != AtomBlock {
		return nil, false
	}
	inner, ok := a.Block.Get("define")
	if !ok || inner == nil || inner.Kind != AtomBlock {
		return nil, false
	}
	out := make(map[string][]int)
	for _, k := range inner.Block.Keys() {
		v, _ := inner.Block.Get(k)
		if v == nil || v.Kind != AtomList {
			continue
		}
		dims := make([]int, 0, len(v.List))
		allInt := true
		for _, el := range v.List {
			if el.Kind != AtomInt {
				allInt = false
				break
			}
			dims = append(dims, int(el.Int))
		}
		if allInt {
			out[k] = dims
		}
	}
	return out, true
}

// atomFrom parses the atom starting at tok and reports how its parse
// ended. blockDescent, once set by an enclosing Name atom's colon
// qualifier, stays set for the remainder of that enclosing atom's
// element list (see nameAtom) - a further Name encountered under it
// resolves to its own bare identifier rather than opening a new
// named sub-atom, matching the original parser's literal behavior.
func (b *builder) atomFrom(tok *Token, blockDescent bool) (*Atom, endKind, error) {
	switch tok.Kind {
	case TokName:
		if blockDescent {
			return identAtom(tok.Text), endNone, nil
		}
		return b.nameAtom(tok.Text)

	case TokComment, TokComma:
		return nil, endNone, nil

	case TokCloseBrace:
		return nil, endBlock, nil

	case TokNewline:
		return nil, endNewline, nil

	case TokOpenBrace:
		if blockDescent {
			return nil, endNone, &ParseError{Pos: tok.Start, Detail: "block not allowed after a colon-qualified name"}
		}
		a, err := b.block()
		return a, endNone, err

	case TokNumber:
		return numberAtom(tok.Text), endNone, nil

	case TokString:
		return stringAtom(tok.Text), endNone, nil

	case TokBytedataInfo:
		return nil, endNone, nil

	case TokBytedata:
		// A materialized bytedata payload always arrives pre-wrapped
		// under the key "data", matching the tokenizer's own framing
		// of the decoded array rather than a builder-applied name.
		a, err := namedAtom("data", dataAtom(tok.Data))
		return a, endNone, err

	case TokEquals:
		return nil, endNone, nil

	default:
		return nil, endNone, &ParseError{Pos: tok.Start, Detail: "unexpected token kind " + tok.Kind.String()}
	}
}

func numberAtom(text string) *Atom {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return intAtom(i)
	}
	f, _ := strconv.ParseFloat(text, 64)
	return floatAtom(f)
}

// nameAtom parses everything that can follow a bare Name token: a
// brace-delimited block, a Vertices/Triangles array, or a run of
// elements read until the line's terminating newline.
func (b *builder) nameAtom(name string) (*Atom, endKind, error) {
	next, err := b.next()
	if err != nil {
		return nil, endNone, err
	}

	switch {
	case next.Kind == TokOpenBrace:
		value, err := b.block()
		if err != nil {
			return nil, endNone, err
		}
		a, err := namedAtom(name, value)
		return a, endNone, err

	case name == "Vertices" || name == "Triangles":
		if next.Kind != TokNumber {
			return nil, endNone, &ParseError{Pos: next.Start, Detail: name + " must be followed by a count"}
		}
		n, convErr := strconv.Atoi(next.Text)
		if convErr != nil {
			return nil, endNone, &ParseError{Pos: next.Start, Detail: "invalid " + name + " count"}
		}
		newlineTok, err := b.next()
		if err != nil {
			return nil, endNone, err
		}
		if newlineTok.Kind != TokNewline {
			return nil, endNone, &ParseError{Pos: newlineTok.Start, Detail: name + " count must be followed by a newline"}
		}
		vecTok, err := b.next()
		if err != nil {
			return nil, endNone, err
		}
		if vecTok.Kind != TokVec3Array {
			return nil, endNone, &ParseError{Pos: vecTok.Start, Detail: name + " expected a vector array"}
		}
		if vecTok.Vec3.Rows() != n {
			return nil, endNone, &ParseError{Pos: vecTok.Start, Detail: name + " array row count does not match declared count"}
		}
		kind := AtomVertices
		if vecTok.Vec3.IsInt {
			kind = AtomTriangles
		}
		value := &Atom{Kind: kind, Matrix: vecTok.Vec3}
		a, err := namedAtom(name, value)
		return a, endNone, err

	default:
		return b.nameElementList(name, next)
	}
}

// nameElementList reads the sequence of elements following a plain Name
// until the line's terminating newline (or an enclosing '}' surfaces
// through a nested element), applying the colon/block_descent rule.
func (b *builder) nameElementList(name string, next *Token) (*Atom, endKind, error) {
	var elements []*Atom
	forceColon := false
	end := endNone

	for next.Kind != TokNewline {
		if next.Kind == TokColon {
			forceColon = true
			var err error
			next, err = b.next()
			if err != nil {
				return nil, endNone, err
			}
		}

		value, ended, err := b.atomFrom(next, forceColon)
		if err != nil {
			return nil, endNone, err
		}
		if value != nil {
			elements = append(elements, value)
		}
		if ended != endNone {
			end = ended
			break
		}

		next, err = b.next()
		if err != nil {
			return nil, endNone, err
		}
	}
	if end == endNone {
		end = endNewline
	}

	switch len(elements) {
	case 0:
		return identAtom(name), end, nil
	case 1:
		a, err := namedAtom(name, elements[0])
		return a, end, err
	default:
		a, err := namedAtom(name, listAtom(elements))
		return a, end, err
	}
}

// block parses a "{" ... "}" body (the opening brace already consumed)
// into an ordered map, merging each child element the way a literal
// block merges its direct children: a dict-shaped child contributes its
// keys, a bare identifier child contributes itself with a nil value, and
// a duplicate key within the same block is a hard error.
func (b *builder) block() (*Atom, error) {
	om := NewOrderedMap()

	next, err := b.next()
	if err != nil {
		return nil, err
	}

	for next.Kind != TokCloseBrace {
		value, ended, err := b.atomFrom(next, false)
		if err != nil {
			return nil, err
		}
		if value != nil {
			if err := om.merge(value); err != nil {
				return nil, err
			}
		}
		if ended == endBlock {
			break
		}
		next, err = b.next()
		if err != nil {
			return nil, err
		}
	}
	return &Atom{Kind: AtomBlock, Block: om}, nil
}
