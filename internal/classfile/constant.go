package classfile

import (
	"encoding/binary"
	"fmt"
)

// Constant pool tags.
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldref           uint8 = 9
	TagMethodref          uint8 = 10
	TagInterfaceMethodref uint8 = 11
	TagNameAndType        uint8 = 12
	TagMethodHandle       uint8 = 15
	TagMethodType         uint8 = 16
	TagDynamic            uint8 = 17
	TagInvokeDynamic      uint8 = 18
	TagModule             uint8 = 19
	TagPackage            uint8 = 20
)

// maxPoolCount is the largest constant_pool_count a class file can carry.
const maxPoolCount = 0xFFFF

// infoSize holds the fixed payload size of every tag except Utf8.
var infoSize = map[uint8]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagClass:              2,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

// constant is one constant pool slot. info is the payload after the tag,
// written back verbatim. The unusable slot after a Long or Double has tag 0.
type constant struct {
	tag  uint8
	info []byte
	text string // decoded value, Utf8 only
}

// pool is a constant pool indexed from 1; index 0 is never used.
type pool []constant

func parsePool(r *reader) (pool, error) {
	count, err := r.u2("constant pool count")
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("constant pool count is zero")
	}
	p := make(pool, 1, int(count))
	for len(p) < int(count) {
		tag, err := r.u1("constant tag")
		if err != nil {
			return nil, err
		}
		var c constant
		c.tag = tag
		if tag == TagUtf8 {
			n, err := r.u2("utf8 length")
			if err != nil {
				return nil, err
			}
			body, err := r.bytes(int(n), "utf8 bytes")
			if err != nil {
				return nil, err
			}
			if c.text, err = decodeMUTF8(body); err != nil {
				return nil, fmt.Errorf("constant #%d: %w", len(p), err)
			}
			c.info = r.buf[r.off-int(n)-2 : r.off : r.off]
		} else {
			size, ok := infoSize[tag]
			if !ok {
				return nil, fmt.Errorf("constant #%d has unknown tag %d", len(p), tag)
			}
			if c.info, err = r.bytes(size, "constant"); err != nil {
				return nil, err
			}
		}
		p = append(p, c)
		if tag == TagLong || tag == TagDouble {
			if len(p) >= int(count) {
				return nil, fmt.Errorf("constant #%d: wide constant overflows pool", len(p)-1)
			}
			p = append(p, constant{})
		}
	}
	return p, nil
}

func (p pool) get(idx uint16, tag uint8) (constant, error) {
	if idx == 0 || int(idx) >= len(p) {
		return constant{}, fmt.Errorf("constant index %d out of range", idx)
	}
	c := p[idx]
	if c.tag != tag {
		return constant{}, fmt.Errorf("constant #%d has tag %d, want %d", idx, c.tag, tag)
	}
	return c, nil
}

func (p pool) utf8(idx uint16) (string, error) {
	c, err := p.get(idx, TagUtf8)
	if err != nil {
		return "", err
	}
	return c.text, nil
}

func (p pool) className(idx uint16) (string, error) {
	c, err := p.get(idx, TagClass)
	if err != nil {
		return "", err
	}
	return p.utf8(binary.BigEndian.Uint16(c.info))
}

func (p pool) findUtf8(s string) (uint16, bool) {
	for i, c := range p {
		if c.tag == TagUtf8 && c.text == s {
			return uint16(i), true
		}
	}
	return 0, false
}

func (p pool) findClass(name string) (uint16, bool) {
	for i, c := range p {
		if c.tag != TagClass {
			continue
		}
		if n, err := p.utf8(binary.BigEndian.Uint16(c.info)); err == nil && n == name {
			return uint16(i), true
		}
	}
	return 0, false
}

func (p *pool) add(c constant) (uint16, error) {
	if len(*p) >= maxPoolCount {
		return 0, fmt.Errorf("constant pool is full")
	}
	*p = append(*p, c)
	return uint16(len(*p) - 1), nil
}

// addUtf8 returns the index of an existing Utf8 entry equal to s, or appends one.
func (p *pool) addUtf8(s string) (uint16, error) {
	if idx, ok := p.findUtf8(s); ok {
		return idx, nil
	}
	body := encodeMUTF8(s)
	if len(body) > 0xFFFF {
		return 0, fmt.Errorf("string of %d bytes does not fit a Utf8 constant", len(body))
	}
	info := binary.BigEndian.AppendUint16(make([]byte, 0, 2+len(body)), uint16(len(body)))
	return p.add(constant{tag: TagUtf8, info: append(info, body...), text: s})
}

// addClass returns the index of an existing Class entry naming name, or appends one.
func (p *pool) addClass(name string) (uint16, error) {
	if idx, ok := p.findClass(name); ok {
		return idx, nil
	}
	nameIdx, err := p.addUtf8(name)
	if err != nil {
		return 0, err
	}
	return p.add(constant{tag: TagClass, info: binary.BigEndian.AppendUint16(nil, nameIdx)})
}

func (p pool) appendTo(out []byte) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(len(p)))
	for _, c := range p[1:] {
		if c.tag == 0 {
			continue
		}
		out = append(out, c.tag)
		out = append(out, c.info...)
	}
	return out
}
