// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

// Kind identifies the Amira container format.
type Kind int

// Supported/recognized container kinds.
const (
	KindUnknown Kind = iota
	KindAmiraMesh
	KindHyperSurface
)

func (k Kind) String() string {
	switch k {
	case KindAmiraMesh:
		return "AmiraMesh"
	case KindHyperSurface:
		return "HyperSurface"
	default:
		return "Unknown"
	}
}

// FileInfo is the header descriptor, set exactly once from the first
// comment line and immutable thereafter.
type FileInfo struct {
	Kind     Kind
	Version  string
	IsBinary bool
}

// headerTable maps a recognized first-comment-line text to its FileInfo.
var headerTable = map[string]FileInfo{
	"# HyperSurface 0.1 BINARY":               {KindHyperSurface, "0.1", true},
	"# HyperSurface 0.1 ASCII":                {KindHyperSurface, "0.1", false},
	"# AmiraMesh 3D BINARY 2.0":               {KindAmiraMesh, "2.0", true},
	"# AmiraMesh 3D BINARY-LITTLE-ENDIAN 2.0": {KindAmiraMesh, "2.0", true},
	"# AmiraMesh 3D ASCII 2.0":                {KindAmiraMesh, "2.0", false},
	"# AmiraMesh BINARY-LITTLE-ENDIAN 2.1":    {KindAmiraMesh, "2.1", true},
}
