// Package credential describes the Anthropic API key read from configuration.
// Only a truncated prefix of the key is ever exposed.
package credential

import "unicode/utf8"

const (
	// NotFound is reported in place of a prefix when no key is configured.
	NotFound = "not found"

	// DemoValue is the literal key value that forces demo mode.
	DemoValue = "demo-mode"

	ellipsis = "..."
)

// Credential is an opaque API key. It is never mutated after load.
type Credential string

// Present reports whether the credential is set to a non-empty value.
func (c Credential) Present() bool {
	return c != ""
}

// Length returns the number of characters in the credential, 0 when absent.
func (c Credential) Length() int {
	return utf8.RuneCountInString(string(c))
}

// IsDemo reports whether no usable key is configured.
func (c Credential) IsDemo() bool {
	return !c.Present() || c == DemoValue
}

// Prefix returns the first n characters, or the whole value when shorter.
func (c Credential) Prefix(n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range string(c) {
		if count == n {
			return string(c)[:i]
		}
		count++
	}
	return string(c)
}

// PrefixOrNotFound returns Prefix(n), or NotFound when the credential is absent.
func (c Credential) PrefixOrNotFound(n int) string {
	if !c.Present() {
		return NotFound
	}
	return c.Prefix(n)
}

// Masked returns the first n characters followed by an ellipsis,
// or NotFound when the credential is absent.
func (c Credential) Masked(n int) string {
	if !c.Present() {
		return NotFound
	}
	return c.Prefix(n) + ellipsis
}

// String masks the credential so it is safe to pass to a logger.
func (c Credential) String() string {
	return c.Masked(8)
}

// GoString keeps %#v from printing the raw key.
func (c Credential) GoString() string {
	return c.String()
}
