package proxy

import "fmt"

// TriState is a boolean that can defer to a computed default.
type TriState int

const (
	Auto TriState = iota
	Always
	Never
)

// Resolve returns true for Always, false for Never and auto() otherwise.
func (t TriState) Resolve(auto func() bool) bool {
	switch t {
	case Always:
		return true
	case Never:
		return false
	default:
		return auto()
	}
}

func (t TriState) String() string {
	switch t {
	case Always:
		return "always"
	case Never:
		return "never"
	default:
		return "auto"
	}
}

// Set implements pflag.Value.
func (t *TriState) Set(s string) error {
	switch s {
	case "always":
		*t = Always
	case "never":
		*t = Never
	case "auto":
		*t = Auto
	default:
		return fmt.Errorf("invalid value %q (valid: always, never, auto)", s)
	}
	return nil
}

func (t *TriState) Type() string {
	return "always|never|auto"
}
