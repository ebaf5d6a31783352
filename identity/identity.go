// Package identity implements the object-identity rules shared by
// components and fields (spec.md §3 "Object identity"): validated names,
// single-parent trees, and dotted-path resolution.
package identity

import (
	"regexp"
	"strings"

	"github.com/sarchlab/smp/xerrors"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\[\]]*$`)

// ValidateName reports InvalidObjectName if name does not start with a
// letter and contain only letters, digits, '_', '[' or ']'.
func ValidateName(name string) error {
	if name == "" || !namePattern.MatchString(name) {
		return xerrors.New(xerrors.InvalidObjectName, "<unknown>",
			"Object name does not conform to the required syntax",
			"name '"+name+"' must start with a letter and contain only letters, digits, '_', '[' or ']'",
			map[string]any{"name": name})
	}
	return nil
}

// Named is any object in the model tree participating in the single-parent
// hierarchy: components and fields both implement it.
type Named interface {
	Name() string
	Parent() Named
}

// GetPath returns the path from the root to n, inclusive: ancestor names are
// dot-joined, except that a segment naming an array item ("[index]") is
// appended directly with no preceding dot. GetPath and dotted-path
// resolution are inverses up to name validity.
func GetPath(n Named) string {
	var segments []string
	for cur := n; cur != nil; cur = cur.Parent() {
		segments = append([]string{cur.Name()}, segments...)
	}
	var b strings.Builder
	for i, s := range segments {
		if i > 0 && !strings.HasPrefix(s, "[") {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}
