package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbbreviateClassName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Foo", "Foo"},     // default package
		{"a/Foo", "a/Foo"}, // single-letter package
		{"net/minecraft/block/Block", "n/m/b/Block"},           // typical name
		{"net/minecraft/Block$Settings", "n/m/Block$Settings"}, // nested class
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AbbreviateClassName(tt.name))
		})
	}
}

func TestSimpleAndPackageName(t *testing.T) {
	assert.Equal(t, "Block", SimpleName("net/minecraft/block/Block"))
	assert.Equal(t, "net/minecraft/block", PackageName("net/minecraft/block/Block"))
	assert.Equal(t, "Foo", SimpleName("Foo"))
	assert.Equal(t, "", PackageName("Foo"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abcdefg", Truncate("abcdefg", 0))
	assert.Equal(t, "ab...", Truncate("abcdefg", 5))
	assert.Equal(t, "ab", Truncate("abcdefg", 2))
	assert.Equal(t, "日本...", Truncate("日本語の文字列", 5))
}

func TestClassNamesEqual(t *testing.T) {
	assert.True(t, ClassNamesEqual(nil, []string{}))
	assert.True(t, ClassNamesEqual([]string{"a/B", "a/B"}, []string{"a/B", "a/B"}))
	assert.False(t, ClassNamesEqual([]string{"a/B"}, []string{"a/C"}))
	assert.False(t, ClassNamesEqual([]string{"a/B"}, []string{"a/B", "a/B"}))
}
