package classfile

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// richClass returns hand-assembled bytes for a class "a/Rich" extending
// java/lang/Object with a long constant, one field, one method carrying a Code
// attribute and a SourceFile attribute.
func richClass(t *testing.T) []byte {
	t.Helper()
	var b []byte
	u2 := func(v uint16) { b = binary.BigEndian.AppendUint16(b, v) }
	u4 := func(v uint32) { b = binary.BigEndian.AppendUint32(b, v) }
	utf := func(s string) { b = append(b, TagUtf8); u2(uint16(len(s))); b = append(b, s...) }

	u4(Magic)
	u2(0)
	u2(61)
	u2(12)                  // constant_pool_count
	utf("a/Rich")           // #1
	b = append(b, TagClass) // #2
	u2(1)
	utf("java/lang/Object") // #3
	b = append(b, TagClass) // #4
	u2(3)
	b = append(b, TagLong) // #5, #6
	u4(0x01020304)
	u4(0x05060708)
	utf("value")      // #7
	utf("J")          // #8
	utf("Code")       // #9
	utf("SourceFile") // #10
	utf("Rich.java")  // #11

	u2(AccPublic | AccSuper)
	u2(2) // this
	u2(4) // super
	u2(0) // interfaces

	u2(1) // fields
	u2(0x0002)
	u2(7)
	u2(8)
	u2(0)

	u2(1) // methods
	u2(AccPublic)
	u2(7)
	u2(8)
	u2(1)
	u2(9)
	u4(3)
	b = append(b, 0xB1, 0x00, 0x00)

	u2(1) // attributes
	u2(10)
	u4(2)
	u2(11)
	return b
}

func TestParseRoundTrip(t *testing.T) {
	data := richClass(t)
	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "a/Rich", c.Name())
	assert.Equal(t, "java/lang/Object", c.SuperName())
	assert.Empty(t, c.Interfaces())
	assert.Equal(t, 12, c.ConstantCount())
	assert.Equal(t, 17, c.JavaVersion())
	_, ok := c.Signature()
	assert.False(t, ok)

	assert.Equal(t, data, c.Bytes())
}

func TestParseCorrupt(t *testing.T) {
	good := richClass(t)
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte{0xCA, 0xFE, 0xBA, 0xBF}, good[4:]...)},
		{"truncated pool", good[:20]},
		{"truncated tail", good[:len(good)-1]},
		{"trailing bytes", append(append([]byte{}, good...), 0x00)},
		{"unknown tag", func() []byte {
			d := append([]byte{}, good...)
			d[10] = 2 // first constant tag
			return d
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, schema.ErrClassFileCorruption))
		})
	}
}

func TestAddInterface(t *testing.T) {
	c, err := Parse(richClass(t))
	require.NoError(t, err)
	before := c.ConstantCount()

	require.NoError(t, c.AddInterface("api/IRich"))
	assert.Equal(t, []string{"api/IRich"}, c.Interfaces())
	assert.Equal(t, before+2, c.ConstantCount(), "one Utf8 and one Class entry")

	// existing Class constant reused, duplicate entry kept
	require.NoError(t, c.AddInterface("api/IRich"))
	assert.Equal(t, []string{"api/IRich", "api/IRich"}, c.Interfaces())
	assert.Equal(t, before+2, c.ConstantCount())

	// Utf8 "value" exists but no Class for it
	require.NoError(t, c.AddInterface("value"))
	assert.Equal(t, before+3, c.ConstantCount())

	reparsed, err := Parse(c.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"api/IRich", "api/IRich", "value"}, reparsed.Interfaces())
}

func TestSetSignature(t *testing.T) {
	original := richClass(t)
	c, err := Parse(original)
	require.NoError(t, err)

	require.NoError(t, c.SetSignature("Ljava/lang/Object;Lapi/IRich<TT;>;"))
	sig, ok := c.Signature()
	require.True(t, ok)
	assert.Equal(t, "Ljava/lang/Object;Lapi/IRich<TT;>;", sig)

	require.NoError(t, c.SetSignature("Ljava/lang/Object;"))
	sig, _ = c.Signature()
	assert.Equal(t, "Ljava/lang/Object;", sig)
	assert.Len(t, c.attributes, 2, "signature replaced, not duplicated")

	out := c.Bytes()
	reparsed, err := Parse(out)
	require.NoError(t, err)
	sig, _ = reparsed.Signature()
	assert.Equal(t, "Ljava/lang/Object;", sig)

	// Existing pool entries are written verbatim: everything up to the end of
	// entry #11 only differs in the pool count.
	poolEnd := 10 + len(poolBytes(t, original))
	assert.Equal(t, original[10:poolEnd], out[10:poolEnd])
}

func poolBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	r := &reader{buf: data, off: 8}
	_, err := parsePool(r)
	require.NoError(t, err)
	return data[10:r.off]
}

func TestRewrite(t *testing.T) {
	foo, err := New("com/example/Foo", "java/lang/Object", 0)
	require.NoError(t, err)

	info := schema.AbstractedClassInfo{
		APIClassName: "com/example/IFoo",
		NewSignature: "Lcom/example/Base<Lcom/example/Foo;>;",
	}
	out, err := Rewrite(foo.Bytes(), info)
	require.NoError(t, err)

	c, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "com/example/Foo", c.Name())
	assert.Equal(t, "java/lang/Object", c.SuperName())
	assert.Contains(t, c.Interfaces(), "com/example/IFoo")
	sig, ok := c.Signature()
	require.True(t, ok)
	assert.Equal(t, info.NewSignature, sig)
}

func TestRewriteKeepsExistingInterfaces(t *testing.T) {
	c, err := New("a/B", "java/lang/Object", 0, "java/io/Serializable")
	require.NoError(t, err)

	out, err := Rewrite(c.Bytes(), schema.AbstractedClassInfo{APIClassName: "api/IB", NewSignature: "Ljava/lang/Object;Lapi/IB;"})
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"java/io/Serializable", "api/IB"}, reparsed.Interfaces())
}

func TestRewriteCorrupt(t *testing.T) {
	_, err := Rewrite([]byte("not a class"), schema.AbstractedClassInfo{APIClassName: "a/I"})
	assert.True(t, errors.Is(err, schema.ErrClassFileCorruption))
}

func TestPoolFull(t *testing.T) {
	p := make(pool, maxPoolCount)
	_, err := p.addUtf8("overflow")
	assert.Error(t, err)
}

func TestNewWithoutSuper(t *testing.T) {
	c, err := New("java/lang/Object", "", 45)
	require.NoError(t, err)
	assert.Equal(t, "", c.SuperName())
	assert.Equal(t, 1, c.JavaVersion())
}
