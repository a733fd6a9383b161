// Package compact implements the flat canonical byte codec used for the
// voucher wire form.
//
// Vouchers travel out-of-band (issued by a KYC backend, handed to the
// contributor, pasted into a client), so the encoding has to be compact,
// deterministic and paranoid on decode:
//   - Integers use base-128 varints with a stop bit; over-long encodings
//     are rejected so every value has exactly one byte representation.
//   - big.Int values are length-prefixed magnitude bytes with no leading
//     zero byte allowed (same canonical-form rule big.Int.Bytes produces).
//   - Length prefixes are bounded by MaxAlloc so a hostile blob cannot
//     force a huge allocation before validation fails.
//   - Decoding runs under a recover guard: any out-of-bounds read surfaces
//     as ErrMalformed instead of a panic.
package compact

import (
	"errors"
	"math/big"
)

var (
	// ErrMalformed means the blob is truncated or structurally invalid.
	ErrMalformed = errors.New("malformed compact encoding")

	// ErrNonCanonical means the data decodes but is not in minimal form
	// (over-long varint or a big.Int with a leading zero byte).
	ErrNonCanonical = errors.New("non-canonical compact encoding")

	// ErrTooLargeAlloc means a declared length exceeds MaxAlloc.
	ErrTooLargeAlloc = errors.New("compact encoding declares too large allocation")
)

// MaxAlloc bounds any single length-prefixed field. Vouchers are tiny;
// anything near this limit is garbage or an attack.
const MaxAlloc = 4 * 1024

// Writer accumulates an encoding. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Uint64 appends v as a base-128 varint, low groups first. The top bit of
// each byte marks "more groups follow".
func (w *Writer) Uint64(v uint64) {
	for {
		chunk := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			chunk |= 0x80
		}
		w.buf = append(w.buf, chunk)
		if v == 0 {
			return
		}
	}
}

// Bool appends a single 0/1 byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// FixedBytes appends b verbatim, without a length prefix. The reader must
// know the size (addresses, hashes, signatures).
func (w *Writer) FixedBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// BigInt appends a non-negative big integer as [varint length][magnitude].
// big.Int.Bytes already strips leading zeros, keeping the form canonical.
func (w *Writer) BigInt(v *big.Int) {
	b := v.Bytes()
	w.Uint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// Reader consumes an encoding produced by Writer. Methods panic on
// truncated input; Decode converts those panics into ErrMalformed.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps a raw blob for decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Empty reports whether the whole blob has been consumed. Decoders use it
// to reject trailing garbage.
func (r *Reader) Empty() bool {
	return r.pos >= len(r.buf)
}

func (r *Reader) readByte() byte {
	b := r.buf[r.pos] // panics on truncated input, caught by Decode
	r.pos++
	return b
}

// Uint64 reads a varint and enforces canonical (minimal) form.
func (r *Reader) Uint64() uint64 {
	var v uint64
	var last byte
	for shift := uint(0); ; shift += 7 {
		if shift > 63 {
			panic(ErrMalformed)
		}
		last = r.readByte()
		v |= uint64(last&0x7f) << shift
		if last&0x80 == 0 {
			// A trailing zero group (except for the value 0 itself) means
			// the same number had a shorter encoding.
			if last == 0 && shift != 0 {
				panic(ErrNonCanonical)
			}
			return v
		}
	}
}

// Bool reads a strict 0/1 byte.
func (r *Reader) Bool() bool {
	switch r.readByte() {
	case 0:
		return false
	case 1:
		return true
	default:
		panic(ErrNonCanonical)
	}
}

// FixedBytes reads exactly n bytes.
func (r *Reader) FixedBytes(n int) []byte {
	if n > MaxAlloc {
		panic(ErrTooLargeAlloc)
	}
	if r.pos+n > len(r.buf) {
		panic(ErrMalformed)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out
}

// BigInt reads a length-prefixed magnitude and rejects non-canonical forms.
func (r *Reader) BigInt() *big.Int {
	n := r.Uint64()
	if n > MaxAlloc {
		panic(ErrTooLargeAlloc)
	}
	b := r.FixedBytes(int(n))
	if len(b) > 0 && b[0] == 0 {
		panic(ErrNonCanonical)
	}
	return new(big.Int).SetBytes(b)
}

// Decode runs fn over a reader for the blob and converts decode panics into
// errors. It also rejects blobs with unconsumed trailing bytes, so an
// encoding has exactly one valid serialization.
func Decode(raw []byte, fn func(*Reader) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			// Our own sentinels pass through; anything else (out-of-range
			// reads on truncated input) collapses to ErrMalformed.
			if e, ok := rec.(error); ok &&
				(errors.Is(e, ErrMalformed) || errors.Is(e, ErrNonCanonical) || errors.Is(e, ErrTooLargeAlloc)) {
				err = e
				return
			}
			err = ErrMalformed
		}
	}()
	r := NewReader(raw)
	if err := fn(r); err != nil {
		return err
	}
	if !r.Empty() {
		return ErrMalformed
	}
	return nil
}
