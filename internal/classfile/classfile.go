// Package classfile reads, edits and writes JVM class files.
//
// Only the parts needed to add an implemented interface and replace the class
// Signature attribute are decoded. Fields, methods and unrelated attributes are
// carried as raw bytes, and existing constant pool entries are never modified
// or reordered, so every index in code and member attributes stays valid.
package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Astrarre/FebbGradle/schema"
)

// Magic is the class file signature.
const Magic uint32 = 0xCAFEBABE

const signatureAttr = "Signature"

// Attribute is a class-level attribute kept as raw bytes.
type Attribute struct {
	NameIndex uint16
	Info      []byte
}

// Class is a parsed class file.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16

	pool       pool
	thisClass  uint16
	superClass uint16
	interfaces []uint16
	fields     []byte // raw table including count
	methods    []byte // raw table including count
	attributes []Attribute
}

// Parse decodes class file bytes. The returned Class aliases data for the
// parts it keeps raw, so data must not be modified afterwards.
func Parse(data []byte) (*Class, error) {
	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrClassFileCorruption, err)
	}
	return c, nil
}

func parse(data []byte) (*Class, error) {
	r := &reader{buf: data}
	magic, err := r.u4("magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("bad magic 0x%08X", magic)
	}

	c := &Class{}
	if c.MinorVersion, err = r.u2("minor version"); err != nil {
		return nil, err
	}
	if c.MajorVersion, err = r.u2("major version"); err != nil {
		return nil, err
	}
	if c.pool, err = parsePool(r); err != nil {
		return nil, err
	}
	if c.AccessFlags, err = r.u2("access flags"); err != nil {
		return nil, err
	}
	if c.thisClass, err = r.u2("this class"); err != nil {
		return nil, err
	}
	if _, err := c.pool.className(c.thisClass); err != nil {
		return nil, fmt.Errorf("this class: %w", err)
	}
	if c.superClass, err = r.u2("super class"); err != nil {
		return nil, err
	}

	n, err := r.u2("interfaces count")
	if err != nil {
		return nil, err
	}
	c.interfaces = make([]uint16, n)
	for i := range c.interfaces {
		if c.interfaces[i], err = r.u2("interface"); err != nil {
			return nil, err
		}
	}

	if c.fields, err = r.skipMembers("field"); err != nil {
		return nil, err
	}
	if c.methods, err = r.skipMembers("method"); err != nil {
		return nil, err
	}

	n, err = r.u2("attributes count")
	if err != nil {
		return nil, err
	}
	c.attributes = make([]Attribute, n)
	for i := range c.attributes {
		if c.attributes[i].NameIndex, err = r.u2("attribute name"); err != nil {
			return nil, err
		}
		size, err := r.u4("attribute length")
		if err != nil {
			return nil, err
		}
		if c.attributes[i].Info, err = r.bytes(int(size), "attribute"); err != nil {
			return nil, err
		}
	}

	if r.off != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after class", len(data)-r.off)
	}
	return c, nil
}

// Bytes serializes the class. Constant pool entries, members and attributes
// that were parsed are written exactly as they were read.
func (c *Class) Bytes() []byte {
	out := make([]byte, 0, 256+len(c.fields)+len(c.methods))
	out = binary.BigEndian.AppendUint32(out, Magic)
	out = binary.BigEndian.AppendUint16(out, c.MinorVersion)
	out = binary.BigEndian.AppendUint16(out, c.MajorVersion)
	out = c.pool.appendTo(out)
	out = binary.BigEndian.AppendUint16(out, c.AccessFlags)
	out = binary.BigEndian.AppendUint16(out, c.thisClass)
	out = binary.BigEndian.AppendUint16(out, c.superClass)
	out = binary.BigEndian.AppendUint16(out, uint16(len(c.interfaces)))
	for _, idx := range c.interfaces {
		out = binary.BigEndian.AppendUint16(out, idx)
	}
	out = append(out, c.fields...)
	out = append(out, c.methods...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(c.attributes)))
	for _, a := range c.attributes {
		out = binary.BigEndian.AppendUint16(out, a.NameIndex)
		out = binary.BigEndian.AppendUint32(out, uint32(len(a.Info)))
		out = append(out, a.Info...)
	}
	return out
}

// Name returns the binary name of this class.
func (c *Class) Name() string {
	name, _ := c.pool.className(c.thisClass)
	return name
}

// SuperName returns the binary name of the superclass, or "" for java/lang/Object itself.
func (c *Class) SuperName() string {
	if c.superClass == 0 {
		return ""
	}
	name, _ := c.pool.className(c.superClass)
	return name
}

// Interfaces returns the binary names of the directly implemented interfaces,
// duplicates included.
func (c *Class) Interfaces() []string {
	names := make([]string, 0, len(c.interfaces))
	for _, idx := range c.interfaces {
		name, err := c.pool.className(idx)
		if err != nil {
			name = fmt.Sprintf("#%d", idx)
		}
		names = append(names, name)
	}
	return names
}

// Signature returns the class generic signature, if the class has one.
func (c *Class) Signature() (string, bool) {
	i := c.signatureAttribute()
	if i < 0 || len(c.attributes[i].Info) != 2 {
		return "", false
	}
	sig, err := c.pool.utf8(binary.BigEndian.Uint16(c.attributes[i].Info))
	if err != nil {
		return "", false
	}
	return sig, true
}

// ConstantCount returns constant_pool_count.
func (c *Class) ConstantCount() int {
	return len(c.pool)
}

// JavaVersion maps the major version to a Java release number, e.g. 52 to 8.
func (c *Class) JavaVersion() int {
	if c.MajorVersion < 45 {
		return 0
	}
	if c.MajorVersion <= 48 {
		return 1 // 1.1 through 1.4
	}
	return int(c.MajorVersion) - 44
}

// AddInterface appends name to the implemented interfaces. An existing Class
// constant for name is reused. The interface is appended even when the class
// already implements it.
func (c *Class) AddInterface(name string) error {
	if len(c.interfaces) >= 0xFFFF {
		return errors.New("too many interfaces")
	}
	idx, err := c.pool.addClass(name)
	if err != nil {
		return fmt.Errorf("adding interface %s: %w", name, err)
	}
	c.interfaces = append(c.interfaces, idx)
	return nil
}

// SetSignature replaces the class Signature attribute, adding one if absent.
func (c *Class) SetSignature(sig string) error {
	sigIdx, err := c.pool.addUtf8(sig)
	if err != nil {
		return fmt.Errorf("setting signature: %w", err)
	}
	info := binary.BigEndian.AppendUint16(nil, sigIdx)

	if i := c.signatureAttribute(); i >= 0 {
		c.attributes[i].Info = info
		return nil
	}
	if len(c.attributes) >= 0xFFFF {
		return errors.New("too many attributes")
	}
	nameIdx, err := c.pool.addUtf8(signatureAttr)
	if err != nil {
		return fmt.Errorf("setting signature: %w", err)
	}
	c.attributes = append(c.attributes, Attribute{NameIndex: nameIdx, Info: info})
	return nil
}

func (c *Class) signatureAttribute() int {
	for i, a := range c.attributes {
		if name, err := c.pool.utf8(a.NameIndex); err == nil && name == signatureAttr {
			return i
		}
	}
	return -1
}
