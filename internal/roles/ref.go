package roles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taskhub/taskhub/internal/rbac"
)

// ErrMalformedRef reports a role reference that is neither a name nor an object with a name.
var ErrMalformedRef = errors.New("roles: malformed role reference")

// Ref is a role reference as it arrives from API payloads: either a bare name
// ("developer") or an object carrying at least a name ({"id": 3, "name": "developer"}).
type Ref struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// RefOf builds a Ref from a bare name.
func RefOf(name string) Ref {
	return Ref{Name: name}
}

// RoleName returns the canonical name of the reference.
func (r Ref) RoleName() string {
	return canonical(r.Name)
}

// MarshalJSON always emits the object form.
func (r Ref) MarshalJSON() ([]byte, error) {
	type plain Ref
	return json.Marshal(plain{ID: r.ID, Name: canonical(r.Name)})
}

// UnmarshalJSON accepts the string and the object forms and rejects everything else.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrMalformedRef
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRef, err)
		}
		if canonical(name) == "" {
			return fmt.Errorf("%w: empty name", ErrMalformedRef)
		}
		*r = Ref{Name: name}
		return nil
	case '{':
		var obj struct {
			ID   int64           `json:"id"`
			Name json.RawMessage `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRef, err)
		}
		var name string
		if len(obj.Name) == 0 || json.Unmarshal(obj.Name, &name) != nil || canonical(name) == "" {
			return fmt.Errorf("%w: object without a string name", ErrMalformedRef)
		}
		*r = Ref{ID: obj.ID, Name: name}
		return nil
	default:
		return fmt.Errorf("%w: unexpected %s", ErrMalformedRef, string(data))
	}
}

type named interface {
	RoleName() string
}

// Normalize collapses a role reference of any supported shape into its canonical name.
func Normalize(v any) (string, error) {
	var name string
	switch ref := v.(type) {
	case string:
		name = ref
	case *Ref:
		if ref == nil {
			return "", ErrMalformedRef
		}
		name = ref.Name
	case named:
		name = ref.RoleName()
	case map[string]any:
		s, ok := ref["name"].(string)
		if !ok {
			return "", fmt.Errorf("%w: object without a string name", ErrMalformedRef)
		}
		name = s
	default:
		return "", fmt.Errorf("%w: %T", ErrMalformedRef, v)
	}
	name = canonical(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrMalformedRef)
	}
	return name, nil
}

// Names returns canonical, de-duplicated names in input order.
func Names(refs []Ref) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		name := ref.RoleName()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Refs wraps bare names into references.
func Refs(names ...string) []Ref {
	out := make([]Ref, 0, len(names))
	for _, n := range names {
		out = append(out, RefOf(n))
	}
	return out
}

// HasAnyRole reports whether any reference names one of candidates. Both sides are
// compared case-insensitively.
func HasAnyRole(refs []Ref, candidates ...string) bool {
	if len(refs) == 0 || len(candidates) == 0 {
		return false
	}
	want := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		want[canonical(c)] = struct{}{}
	}
	for _, ref := range refs {
		if _, ok := want[ref.RoleName()]; ok {
			return true
		}
	}
	return false
}

func canonical(name string) string {
	return rbac.CanonicalRole(name)
}
