// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package amira reads Amira/HyperSurface scientific mesh and lattice
// files: a small declarative grammar of named atoms, some of them
// carrying sized binary payloads, wrapped around a handful of raw/zlib/
// run-length encodings.
package amira

import (
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	"github.com/scigolib/amira/log"
)

// Options configures a read. The zero value is a usable default.
type Options struct {
	// Logger receives non-fatal diagnostics (e.g. an unrecognized
	// header comment). Nil disables logging.
	Logger log.Logger

	// DefaultBinary selects the assumed payload mode when the file's
	// header comment is not one of the recognized strings.
	DefaultBinary bool

	// MaxTopLevelAtoms bounds the number of top-level atoms a single
	// document may contain, guarding against unbounded input; zero
	// means unbounded.
	MaxTopLevelAtoms int

	// StrictUnknownHeader turns an unrecognized header comment into a
	// fatal ParseError instead of a logged warning and DefaultBinary
	// fallback.
	StrictUnknownHeader bool
}

func (o *Options) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		return nil
	}
	return log.NewHelper(o.Logger)
}

// Document is the parsed result: the file's header descriptor plus its
// top-level atoms in source order.
type Document struct {
	Info  FileInfo
	Atoms []*Atom
}

// Kind reports the recognized container kind (AmiraMesh, HyperSurface,
// or Unknown).
func (d *Document) Kind() Kind { return d.Info.Kind }

// IsHyperSurface reports whether the document's header identified it as
// a HyperSurface file, the condition most callers actually care about
// rather than comparing Kind directly.
func (d *Document) IsHyperSurface() bool { return d.Info.Kind == KindHyperSurface }

// Get looks up a top-level key by merging all top-level named atoms in
// source order, last value winning on a repeated key - the same
// "dict.update" semantics am_to_nrrd.py relies on when it scans a
// document's top-level atoms for "Parameters", "define" and friends,
// as opposed to the duplicate-is-an-error rule OrderedMap.merge applies
// within a single literal block.
func (d *Document) Get(key string) (*Atom, bool) {
	flat := d.Flatten()
	return flat.Get(key)
}

// Flatten folds the document's top-level atoms into a single ordered map,
// later atoms overwriting earlier ones under the same key. This view is
// used by Get and by callers that index the document by section name
// (Parameters, Materials, define, ...).
func (d *Document) Flatten() *OrderedMap {
	om := NewOrderedMap()
	for _, a := range d.Atoms {
		if a.Kind != AtomBlock {
			continue
		}
		for _, k := range a.Block.Keys() {
			v, _ := a.Block.Get(k)
			om.overwrite(k, v)
		}
	}
	return om
}

// Fingerprint returns a content hash of the document's raw source bytes,
// suitable for cache keys and dedup; it says nothing about the parsed
// structure.
func Fingerprint(raw []byte) uint64 {
	return xxhash.Sum64(raw)
}

// Source is a scoped, caller-managed handle to a file backing a parse:
// Open maps the file and Close unconditionally releases it, mirroring
// the single-threaded, non-reentrant acquire/release contract the format
// requires (concurrent Sources over independent files are fine; a single
// Source must not be shared across goroutines or reused after Close).
type Source struct {
	f    *os.File
	mm   mmap.MMap
	data []byte
	opts *Options
}

// Open maps path read-only for zero-copy parsing. The returned Source
// must be closed by the caller; parsed Documents may alias its backing
// memory for raw-encoded lattice payloads, so Close must not be called
// until the Document is no longer needed.
func Open(path string, opts *Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Source{f: f, mm: m, data: []byte(m), opts: opts}, nil
}

// NewBytesSource wraps an already-loaded buffer for parsing; Close is a
// no-op in this case since there is no file handle to release.
func NewBytesSource(data []byte, opts *Options) *Source {
	return &Source{data: data, opts: opts}
}

// Close releases any mapped file handle. It is safe to call multiple
// times and safe to call on a bytes-backed Source.
func (s *Source) Close() error {
	var err error
	if s.mm != nil {
		err = s.mm.Unmap()
		s.mm = nil
	}
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
		s.f = nil
	}
	return err
}

// Parse reads the full document from the source. The returned Document
// may alias the Source's backing memory for raw-encoded binary payloads;
// callers that need the Document to outlive the Source must copy those
// payloads first, or use ReadFile/ReadBytes instead.
func (s *Source) Parse() (*Document, error) {
	return parseBytes(s.data, s.opts)
}

func parseBytes(data []byte, opts *Options) (doc *Document, err error) {
	if opts == nil {
		opts = &Options{}
	}
	defer recoverParse(&err)

	tok := newTokenizer(data, opts, opts.helper())
	b := newBuilder(tok, opts)

	atoms, err := b.top(opts.MaxTopLevelAtoms)
	if err != nil {
		return nil, err
	}
	if opts.StrictUnknownHeader && tok.info.Kind == KindUnknown {
		return nil, &ParseError{Detail: "unrecognized file header"}
	}
	return &Document{Info: tok.info, Atoms: atoms}, nil
}

// ReadFile reads and parses path into an independently-owned Document:
// unlike Open/Parse, the returned Document never aliases file-backed
// memory, so the file can be (and is) fully closed before ReadFile
// returns.
func ReadFile(path string, opts *Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBytes(data, opts)
}

// ReadBytes parses an in-memory buffer. The returned Document may alias
// data for raw-encoded payloads; callers that mutate or discard data
// afterwards must copy first.
func ReadBytes(data []byte, opts *Options) (*Document, error) {
	return parseBytes(data, opts)
}

// recoverParse turns a panic inside the recursive tree builder into a
// ParseError, mirroring the defer/recover guard the teacher places around
// its own recursive-descent parse of nested data directories. Top-level
// entry points call this so a malformed, deeply-nested document fails
// cleanly instead of crashing the process.
func recoverParse(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = &ParseError{Detail: e.Error()}
			return
		}
		*err = &ParseError{Detail: "internal parser error"}
	}
}
