package contract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		status   schema.RunStatus
		expected string
	}{
		{schema.RunSuccess, "Rewritten"},
		{schema.RunSkipped, "Up to date"},
		{schema.RunFailed, "Failed"},
		{schema.RunPending, "Pending"},
		{schema.RunStatus("bogus"), "Pending"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.status))
			assert.Contains(t, GetColorLabel(tt.status), tt.expected)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, schema.RunFailed, StatusOf(schema.ProcessResult{}, errors.New("boom")))
	assert.Equal(t, schema.RunSkipped, StatusOf(schema.ProcessResult{Skipped: true, State: schema.StateCommitted}, nil))
	assert.Equal(t, schema.RunSuccess, StatusOf(schema.ProcessResult{State: schema.StateCommitted}, nil))
	assert.Equal(t, schema.RunPending, StatusOf(schema.ProcessResult{State: schema.StateRewritten}, nil))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")
		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		require.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		excludes   []string
		wantIgnore bool
	}{
		{"empty excludes", "com/example/Foo.class", nil, false},
		{"prefix match", "META-INF/versions/9/module-info.class", []string{"META-INF/"}, true},
		{"suffix match", "com/example/Foo.class", []string{".class"}, true},
		{"glob match basename", "com/example/FooMixin.class", []string{"*Mixin.class"}, true},
		{"glob match full path", "com/example/Foo.class", []string{"com/*/Foo.class"}, true},
		{"substring match", "com/example/generated/Foo.class", []string{"generated"}, true},
		{"no match", "com/example/Foo.class", []string{"META-INF/", "*Mixin.class"}, false},
		{"blank pattern", "com/example/Foo.class", []string{"  "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIgnore, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	record := GetRecordDBFilePath()
	assert.Contains(t, record, ".febb_records.db")
	assert.True(t, strings.HasPrefix(record, homeDir))

	history := GetHistoryDBFilePath()
	assert.Contains(t, history, ".febb_history.db")
	assert.NotEqual(t, record, history)

	assert.Equal(t, filepath.Join(homeDir, ".m2", "repository"), GetLocalRepositoryPath())
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "com/example/Foo", TruncatePath("com/example/Foo", 20))
	assert.Equal(t, ".../Foo", TruncatePath("com/example/Foo", 7))
	assert.Equal(t, "com/example/Foo", TruncatePath("com/example/Foo", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
