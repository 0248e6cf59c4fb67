package classfile

import (
	"fmt"

	"github.com/Astrarre/FebbGradle/schema"
)

// Rewrite adds info.APIClassName to the class's interfaces and replaces its
// signature with info.NewSignature, returning the new class bytes.
func Rewrite(classBytes []byte, info schema.AbstractedClassInfo) ([]byte, error) {
	c, err := Parse(classBytes)
	if err != nil {
		return nil, err
	}
	if err := c.AddInterface(info.APIClassName); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", schema.ErrClassFileCorruption, c.Name(), err)
	}
	if err := c.SetSignature(info.NewSignature); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", schema.ErrClassFileCorruption, c.Name(), err)
	}
	return c.Bytes(), nil
}

// New builds a minimal class file with no members or attributes. The major
// version defaults to 52 (Java 8) when zero.
func New(name, superName string, major uint16, interfaces ...string) (*Class, error) {
	if major == 0 {
		major = 52
	}
	c := &Class{MajorVersion: major, AccessFlags: AccPublic | AccSuper, pool: make(pool, 1)}
	var err error
	if c.thisClass, err = c.pool.addClass(name); err != nil {
		return nil, err
	}
	if superName != "" {
		if c.superClass, err = c.pool.addClass(superName); err != nil {
			return nil, err
		}
	}
	for _, iface := range interfaces {
		if err := c.AddInterface(iface); err != nil {
			return nil, err
		}
	}
	c.fields = []byte{0, 0}
	c.methods = []byte{0, 0}
	return c, nil
}

// Class access flags used by New.
const (
	AccPublic    uint16 = 0x0001
	AccSuper     uint16 = 0x0020
	AccInterface uint16 = 0x0200
)
