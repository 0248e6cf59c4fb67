// Package manifest parses and writes abstraction manifests.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Astrarre/FebbGradle/schema"
)

// entry mirrors AbstractedClassInfo with pointer fields so a missing field
// can be told apart from an empty one.
type entry struct {
	APIClassName *string `json:"apiClassName"`
	NewSignature *string `json:"newSignature"`
}

// Parse decodes manifest bytes. The top level must be an object whose keys are
// binary class names and whose values are objects carrying the string fields
// apiClassName and newSignature. Unknown fields are ignored. A key that appears
// twice is rejected.
func Parse(data []byte) (schema.AbstractionManifest, error) {
	if !utf8.Valid(data) {
		return nil, malformed("manifest is not valid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformedErr("reading manifest", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, malformed("manifest must be a JSON object")
	}

	out := make(schema.AbstractionManifest)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformedErr("reading key", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed("expected object key")
		}
		if _, seen := out[key]; seen {
			return nil, malformed(fmt.Sprintf("duplicate key %q", key))
		}
		if !IsBinaryClassName(key) {
			return nil, malformed(fmt.Sprintf("key %q is not a binary class name", key))
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformedErr(fmt.Sprintf("reading value of %q", key), err)
		}
		info, err := parseEntry(key, raw)
		if err != nil {
			return nil, err
		}
		out[key] = info
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, malformedErr("reading manifest", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("trailing data after manifest object")
	}
	return out, nil
}

func parseEntry(key string, raw json.RawMessage) (schema.AbstractedClassInfo, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return schema.AbstractedClassInfo{}, malformed(fmt.Sprintf("value of %q must be an object", key))
	}
	var e entry
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return schema.AbstractedClassInfo{}, malformedErr(fmt.Sprintf("value of %q", key), err)
	}
	if e.APIClassName == nil {
		return schema.AbstractedClassInfo{}, malformed(fmt.Sprintf("%q is missing apiClassName", key))
	}
	if e.NewSignature == nil {
		return schema.AbstractedClassInfo{}, malformed(fmt.Sprintf("%q is missing newSignature", key))
	}
	return schema.AbstractedClassInfo{APIClassName: *e.APIClassName, NewSignature: *e.NewSignature}, nil
}

// Marshal writes the canonical form of a manifest: keys sorted, two-space
// indentation and a trailing newline. Parse(Marshal(m)) yields m again.
func Marshal(m schema.AbstractionManifest) ([]byte, error) {
	if m == nil {
		m = schema.AbstractionManifest{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // signatures contain '<' and '>'
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile reads and parses the manifest at path. The raw bytes are returned
// alongside the parsed manifest since invalidation compares bytes, not content.
func ReadFile(path string) ([]byte, schema.AbstractionManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading manifest %s: %w", schema.ErrIO, path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, m, nil
}

// IsBinaryClassName reports whether s looks like an internal JVM class name
// such as "net/minecraft/block/Block".
func IsBinaryClassName(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") || strings.Contains(s, "//") {
		return false
	}
	return !strings.ContainsAny(s, ".;[")
}

func malformed(msg string) error {
	return fmt.Errorf("%w: %s", schema.ErrMalformedManifest, msg)
}

func malformedErr(msg string, cause error) error {
	return fmt.Errorf("%w: %s: %w", schema.ErrMalformedManifest, msg, cause)
}
