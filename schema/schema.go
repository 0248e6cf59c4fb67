// Package schema has configs, models and global variables for all parts of febb.
package schema

// AbstractedClassInfo is one manifest entry. It names the interface to add to a
// class and the generic signature that replaces the class's current one.
type AbstractedClassInfo struct {
	APIClassName string `json:"apiClassName" yaml:"apiClassName"` // Binary name of the interface to implement
	NewSignature string `json:"newSignature" yaml:"newSignature"` // JVM generic class signature, opaque here
}

// AbstractionManifest maps binary class names to the rewrite applied to them.
// Any class whose name is not a key is left untouched.
type AbstractionManifest map[string]AbstractedClassInfo

// Lookup returns the entry for a binary class name.
func (m AbstractionManifest) Lookup(className string) (AbstractedClassInfo, bool) {
	info, ok := m[className]
	return info, ok
}

// Contains reports whether the class name is a key of the manifest.
func (m AbstractionManifest) Contains(className string) bool {
	_, ok := m[className]
	return ok
}
