// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package amira

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Encoding names a lattice payload encoding, as declared by a bytedata
// info token (e.g. "raw", "HxZip", "HxByteRLE").
type Encoding string

// Supported lattice payload encodings.
const (
	EncodingRaw       Encoding = "raw"
	EncodingHxZip     Encoding = "HxZip"
	EncodingHxByteRLE Encoding = "HxByteRLE"
)

// decodePayload dispatches a raw binary slab to the decoder named by enc.
func decodePayload(enc Encoding, b []byte) ([]byte, error) {
	switch enc {
	case EncodingRaw:
		return decodeRaw(b)
	case EncodingHxZip:
		return decodeZlib(b)
	case EncodingHxByteRLE:
		return decodeRLE(b)
	default:
		return nil, &DecodeError{Encoding: string(enc), Reason: "unknown encoding"}
	}
}

// decodeRaw passes the buffer through unchanged; this is the only encoding
// for which the result may alias the input slice.
func decodeRaw(b []byte) ([]byte, error) {
	return b, nil
}

// decodeZlib inflates a zlib-wrapped DEFLATE stream.
func decodeZlib(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, &DecodeError{Encoding: string(EncodingHxZip), Reason: err.Error()}
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Encoding: string(EncodingHxZip), Reason: err.Error()}
	}
	return out, nil
}

// decodeRLE decodes the HxByteRLE scheme: repeatedly read a control byte c.
//
//	c == 0:        end of stream.
//	1 <= c <= 127: read one byte x, append c copies of x.
//	c > 127:       let n = c - 128, append the next n bytes literally.
func decodeRLE(b []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(b) {
		c := b[i]
		i++
		switch {
		case c == 0:
			return out, nil
		case c <= 127:
			if i >= len(b) {
				return nil, &DecodeError{Encoding: string(EncodingHxByteRLE), Reason: "truncated run"}
			}
			x := b[i]
			i++
			for n := 0; n < int(c); n++ {
				out = append(out, x)
			}
		default:
			n := int(c) - 128
			if i+n > len(b) {
				return nil, &DecodeError{Encoding: string(EncodingHxByteRLE), Reason: "truncated literal"}
			}
			out = append(out, b[i:i+n]...)
			i += n
		}
	}
	return out, nil
}
