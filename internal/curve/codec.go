package curve

import "fmt"

// AppendPoint appends the compressed encoding of p to dst.
func AppendPoint(dst []byte, p *Point) []byte {
	b := p.Bytes()
	return append(dst, b[:]...)
}

// AppendScalar appends the canonical encoding of s to dst.
func AppendScalar(dst []byte, s *Scalar) []byte {
	b := s.Bytes()
	return append(dst, b[:]...)
}

// Reader walks a fixed layout of points and scalars. The first failure sticks and
// later reads return zero values, so callers check Err once at the end.
type Reader struct {
	buf []byte
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Next returns the next n raw bytes.
func (r *Reader) Next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = fmt.Errorf("%w: truncated input", ErrInvalidEncoding)
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *Reader) Point() Point {
	b := r.Next(PointSize)
	if r.err != nil {
		return Point{}
	}
	p, err := DecodePoint(b)
	if err != nil {
		r.err = err
	}
	return p
}

func (r *Reader) Scalar() Scalar {
	b := r.Next(ScalarSize)
	if r.err != nil {
		return Scalar{}
	}
	s, err := DecodeScalar(b)
	if err != nil {
		r.err = err
	}
	return s
}

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int {
	return len(r.buf)
}

func (r *Reader) Err() error {
	return r.err
}

// Finish returns the sticky error, or an error if input is left over.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if len(r.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, len(r.buf))
	}
	return nil
}
