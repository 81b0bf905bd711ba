package core

const redacted = "[REDACTED]"

// Secret holds an API key or other credential. Every formatting and
// serialization path prints a placeholder; only Expose returns the value.
//
//	key := NewSecret("sk-abc123")
//	fmt.Println(key)  // [REDACTED]
//	key.Expose()      // "sk-abc123"
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return redacted
}

// GoString implements fmt.GoStringer for %#v.
func (s Secret) GoString() string {
	return "core.Secret{" + redacted + "}"
}

// MarshalJSON always emits the placeholder.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// MarshalText always emits the placeholder, which also covers YAML.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// Expose returns the wrapped value. Callers must not log it.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether no value is held.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}
