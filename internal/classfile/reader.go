package classfile

import (
	"encoding/binary"
	"fmt"
)

// reader is a bounds-checked big-endian cursor over class file bytes.
type reader struct {
	buf []byte
	off int
}

func (r *reader) need(n int, what string) error {
	if n < 0 || r.off+n > len(r.buf) {
		return fmt.Errorf("truncated %s at offset %d", what, r.off)
	}
	return nil
}

func (r *reader) u1(what string) (uint8, error) {
	if err := r.need(1, what); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u2(what string) (uint16, error) {
	if err := r.need(2, what); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u4(what string) (uint32, error) {
	if err := r.need(4, what); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) bytes(n int, what string) ([]byte, error) {
	if err := r.need(n, what); err != nil {
		return nil, err
	}
	v := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return v, nil
}

// skipMembers walks a fields or methods table and returns its raw span,
// including the leading count.
func (r *reader) skipMembers(what string) ([]byte, error) {
	start := r.off
	count, err := r.u2(what + " count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(count); i++ {
		// access_flags, name_index, descriptor_index
		if _, err := r.bytes(6, what); err != nil {
			return nil, err
		}
		attrs, err := r.u2(what + " attribute count")
		if err != nil {
			return nil, err
		}
		for j := 0; j < int(attrs); j++ {
			if _, err := r.u2(what + " attribute name"); err != nil {
				return nil, err
			}
			n, err := r.u4(what + " attribute length")
			if err != nil {
				return nil, err
			}
			if _, err := r.bytes(int(n), what+" attribute"); err != nil {
				return nil, err
			}
		}
	}
	return r.buf[start:r.off:r.off], nil
}
