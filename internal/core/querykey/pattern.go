package querykey

import "fmt"

// Policy decides how much of a key a Pattern must match.
type Policy string

const (
	// MatchExact matches one key: name, scope and parameters.
	MatchExact Policy = "exact"
	// MatchScope matches every parameterization of a name for one entity,
	// for example all date windows of one partition's balance.
	MatchScope Policy = "scope"
	// MatchName matches every parameterization of a name.
	MatchName Policy = "name"
)

// IsValid returns true if the policy is known.
func (p Policy) IsValid() bool {
	switch p {
	case MatchExact, MatchScope, MatchName:
		return true
	default:
		return false
	}
}

// Pattern selects the cached keys to invalidate.
type Pattern struct {
	Name   Name   `json:"name"`
	Scope  string `json:"scope,omitempty"`
	Params string `json:"params,omitempty"`
	Policy Policy `json:"policy"`
}

// Exact returns a pattern matching only k.
func Exact(k Key) Pattern {
	return Pattern{Name: k.Name, Scope: k.Scope, Params: k.Params, Policy: MatchExact}
}

// ByScope returns a pattern matching every key of name scoped to scope.
func ByScope(name Name, scope string) Pattern {
	return Pattern{Name: name, Scope: scope, Policy: MatchScope}
}

// ByName returns a pattern matching every key of name.
func ByName(name Name) Pattern {
	return Pattern{Name: name, Policy: MatchName}
}

// Matches reports whether k is selected by the pattern.
func (p Pattern) Matches(k Key) bool {
	if p.Name != k.Name {
		return false
	}
	switch p.Policy {
	case MatchName:
		return true
	case MatchScope:
		return p.Scope == k.Scope
	case MatchExact:
		return p.Scope == k.Scope && p.Params == k.Params
	default:
		return false
	}
}

// Validate checks a pattern received from outside the process.
func (p Pattern) Validate() error {
	if !p.Name.IsValid() {
		return fmt.Errorf("unknown query name %q", p.Name)
	}
	if !p.Policy.IsValid() {
		return fmt.Errorf("unknown match policy %q", p.Policy)
	}
	if p.Policy == MatchScope && p.Scope == "" {
		return fmt.Errorf("scope pattern for %s has no scope", p.Name)
	}
	return nil
}

func (p Pattern) String() string {
	switch p.Policy {
	case MatchName:
		return string(p.Name) + "(*)"
	case MatchScope:
		return string(p.Name) + "(" + p.Scope + ")"
	default:
		return Key{Name: p.Name, Scope: p.Scope, Params: p.Params}.String()
	}
}
