// Package oid implements the 128-bit object identifier and its text token.
//
// A token is the standard base64 alphabet, without padding, applied to the
// 16-byte little-endian form of the identifier. Tokens are always 22
// characters long.
package oid

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/starford/obweb/internal/wood"
)

// Size is the byte length of an identifier.
const Size = 16

// TokenLen is the length of an encoded token.
const TokenLen = 22

var encoding = base64.RawStdEncoding.Strict()

// ErrOverflow is returned by Next when the identifier space is exhausted.
var ErrOverflow = errors.New("oid: identifier space exhausted")

// OID is an unsigned 128-bit identifier. The zero value is the id 0. OIDs are
// comparable and can be used as map keys.
type OID struct {
	hi, lo uint64
}

// Max is the largest representable identifier.
var Max = OID{hi: ^uint64(0), lo: ^uint64(0)}

// FromUint64 returns the identifier with value v.
func FromUint64(v uint64) OID { return OID{lo: v} }

// FromParts builds an identifier from its high and low 64-bit words.
func FromParts(hi, lo uint64) OID { return OID{hi: hi, lo: lo} }

// Bytes returns the little-endian byte form.
func (o OID) Bytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint64(b[:8], o.lo)
	binary.LittleEndian.PutUint64(b[8:], o.hi)
	return b
}

// FromBytes is the inverse of Bytes.
func FromBytes(b [Size]byte) OID {
	return OID{
		lo: binary.LittleEndian.Uint64(b[:8]),
		hi: binary.LittleEndian.Uint64(b[8:]),
	}
}

// Token encodes o as a 22-character token.
func (o OID) Token() string {
	b := o.Bytes()
	return encoding.EncodeToString(b[:])
}

// String returns the token form.
func (o OID) String() string { return o.Token() }

// Decimal returns o in base 10.
func (o OID) Decimal() string {
	if o.hi == 0 {
		return fmt.Sprintf("%d", o.lo)
	}
	n := new(big.Int).SetUint64(o.hi)
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(o.lo))
	return n.String()
}

// Parse decodes a token. Any input that does not decode to exactly 16 bytes
// is rejected with a *wood.DecodeError.
func Parse(token string) (OID, error) {
	if encoding.DecodedLen(len(token)) != Size {
		return OID{}, wood.NewDecodeError(nil,
			fmt.Sprintf("id token %q", token),
			fmt.Errorf("decodes to %d bytes, want %d", encoding.DecodedLen(len(token)), Size))
	}
	var b [Size]byte
	n, err := encoding.Decode(b[:], []byte(token))
	if err != nil {
		return OID{}, wood.NewDecodeError(nil, fmt.Sprintf("id token %q", token), err)
	}
	if n != Size {
		return OID{}, wood.NewDecodeError(nil,
			fmt.Sprintf("id token %q", token),
			fmt.Errorf("decodes to %d bytes, want %d", n, Size))
	}
	return FromBytes(b), nil
}

// Dewood decodes an identifier held by a leaf node. Errors carry w.
func Dewood(w *wood.Wood) (OID, error) {
	s, err := w.Text()
	if err != nil {
		return OID{}, err
	}
	o, err := Parse(s)
	if err != nil {
		var de *wood.DecodeError
		if errors.As(err, &de) {
			de.Node = w
		}
		return OID{}, err
	}
	return o, nil
}

// Wood returns o as a leaf node.
func (o OID) Wood() *wood.Wood { return wood.Leaf(o.Token()) }

// Cmp returns -1, 0 or +1 depending on whether o is less than, equal to or
// greater than p.
func (o OID) Cmp(p OID) int {
	switch {
	case o.hi < p.hi:
		return -1
	case o.hi > p.hi:
		return 1
	case o.lo < p.lo:
		return -1
	case o.lo > p.lo:
		return 1
	}
	return 0
}

// Equal reports whether o and p are the same id.
func (o OID) Equal(p OID) bool { return o == p }

// Less reports whether o < p.
func (o OID) Less(p OID) bool { return o.Cmp(p) < 0 }

// Next returns o+1.
func (o OID) Next() (OID, error) {
	lo, carry := bits.Add64(o.lo, 1, 0)
	hi, over := bits.Add64(o.hi, 0, carry)
	if over != 0 {
		return OID{}, ErrOverflow
	}
	return OID{hi: hi, lo: lo}, nil
}

// Greater returns the larger of a and b.
func Greater(a, b OID) OID {
	if a.Less(b) {
		return b
	}
	return a
}

// MarshalText implements encoding.TextMarshaler.
func (o OID) MarshalText() ([]byte, error) { return []byte(o.Token()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OID) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*o = p
	return nil
}
