package domain

import "strings"

// MaxNameLength is the maximum byte length of space and member names,
// enforced both here and by CHECK constraints in the schema.
const MaxNameLength = 64

// reservedNameChars are RFC 3986 reserved characters. Space names appear in
// invite links and room URLs, so they may not contain any of them.
const reservedNameChars = `:/?#[]@!$&'()*+,;=`

// Space is a private community scoping members and posts. Created once, never
// mutated; the conference and pad keys are opaque handles generated at
// creation time.
type Space struct {
	Name        string `json:"spaceName"`
	JitsiKey    string `json:"jitsiKey"`
	EtherpadKey string `json:"etherpadKey"`
}

// ValidSpaceName reports whether name fits the length and character
// constraints for a space name.
func ValidSpaceName(name string) bool {
	return len(name) <= MaxNameLength && !strings.ContainsAny(name, reservedNameChars)
}
