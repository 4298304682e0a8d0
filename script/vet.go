package script

import (
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/jonwraymond/botexec/capability"
)

// Denied lists names that may never be called or referenced, even as a
// method name on a value.
var Denied = []string{
	"__import__", "exec", "eval", "open", "file", "compile",
	"globals", "locals", "vars", "getattr", "setattr", "delattr",
	"__builtins__", "input", "breakpoint", "exit", "quit", "help",
	"memoryview", "type", "dir",
}

// Policy selects which calls a script may make. Empty lists fall back to
// the package defaults.
type Policy struct {
	// Capabilities are the callable robot functions.
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`

	// Utilities are the callable helper functions.
	Utilities []string `json:"utilities,omitempty" yaml:"utilities,omitempty"`

	// Deny lists forbidden names.
	Deny []string `json:"deny,omitempty" yaml:"deny,omitempty"`

	// StrictCalls forbids calling functions the script defines itself.
	StrictCalls bool `json:"strictCalls,omitempty" yaml:"strictCalls,omitempty"`
}

// DefaultPolicy allows every capability and utility and denies the
// reflective and I/O names.
func DefaultPolicy() Policy {
	return Policy{
		Capabilities: capability.Names(),
		Utilities:    append([]string(nil), Utilities...),
		Deny:         append([]string(nil), Denied...),
	}
}

// Check parses src and vets the result.
func Check(src string, policy Policy) (*Program, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if err := Vet(prog, policy); err != nil {
		return nil, err
	}
	return prog, nil
}

// Vet walks prog without running it and returns the first construct the
// policy forbids, as an *Error of kind PolicyError. It rejects:
//
//   - any import statement;
//   - calls to names that are not capabilities, utilities or, unless
//     StrictCalls is set, functions the script defines;
//   - method calls whose name is denied;
//   - any reference to a denied name;
//   - any identifier, attribute, parameter or keyword beginning with "__";
//   - function definitions that shadow an allowed or denied name.
func Vet(prog *Program, policy Policy) error {
	if prog == nil {
		return nil
	}
	v := newVetter(policy)
	for _, s := range prog.Body {
		Inspect(s, func(n Node) bool {
			if fn, ok := n.(*FuncDef); ok {
				v.defs.Put(fn.Name)
			}
			return true
		})
	}
	for _, s := range prog.Body {
		Inspect(s, v.visit)
		if v.err != nil {
			return v.err
		}
	}
	return nil
}

type vetter struct {
	caps   mapset.Set[string]
	utils  mapset.Set[string]
	deny   mapset.Set[string]
	defs   mapset.Set[string]
	strict bool
	err    *Error
}

func newVetter(p Policy) *vetter {
	def := DefaultPolicy()
	if len(p.Capabilities) == 0 {
		p.Capabilities = def.Capabilities
	}
	if len(p.Utilities) == 0 {
		p.Utilities = def.Utilities
	}
	if len(p.Deny) == 0 {
		p.Deny = def.Deny
	}
	return &vetter{
		caps:   setOf(p.Capabilities),
		utils:  setOf(p.Utilities),
		deny:   setOf(p.Deny),
		defs:   mapset.New[string](),
		strict: p.StrictCalls,
	}
}

func setOf(names []string) mapset.Set[string] {
	s := mapset.New[string]()
	for _, n := range names {
		s.Put(n)
	}
	return s
}

func (v *vetter) reject(pos Pos, format string, args ...any) bool {
	if v.err == nil {
		v.err = errorf(PolicyError, pos, format, args...)
	}
	return false
}

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__")
}

func (v *vetter) visit(n Node) bool {
	if v.err != nil {
		return false
	}
	switch n := n.(type) {
	case *Import:
		return v.reject(n.Pos, "import of %s is not allowed", strings.Join(n.Names, ", "))
	case *ImportFrom:
		return v.reject(n.Pos, "import from %s is not allowed", n.Module)
	case *Name:
		return v.checkName(n.Pos, n.ID)
	case *Attribute:
		if isDunder(n.Attr) {
			return v.reject(n.Pos, "access to attribute %q is not allowed", n.Attr)
		}
	case *Call:
		return v.checkCall(n)
	case *FuncDef:
		return v.checkDef(n)
	}
	return true
}

func (v *vetter) checkName(pos Pos, id string) bool {
	if v.deny.Has(id) {
		return v.reject(pos, "reference to %q is not allowed", id)
	}
	if isDunder(id) {
		return v.reject(pos, "name %q is not allowed", id)
	}
	return true
}

func (v *vetter) checkCall(c *Call) bool {
	switch f := c.Func.(type) {
	case *Name:
		if v.deny.Has(f.ID) {
			return v.reject(f.Pos, "call to %q is not allowed", f.ID)
		}
		allowed := v.caps.Has(f.ID) || v.utils.Has(f.ID) || (!v.strict && v.defs.Has(f.ID))
		if !allowed {
			return v.reject(f.Pos, "call to %q is not allowed", f.ID)
		}
	case *Attribute:
		if v.deny.Has(f.Attr) {
			return v.reject(f.Pos, "call to method %q is not allowed", f.Attr)
		}
	default:
		return v.reject(c.Pos, "only named functions and methods may be called")
	}
	for _, kw := range c.Keywords {
		if isDunder(kw.Name) {
			return v.reject(kw.Pos, "keyword %q is not allowed", kw.Name)
		}
	}
	return true
}

func (v *vetter) checkDef(fn *FuncDef) bool {
	if isDunder(fn.Name) || v.deny.Has(fn.Name) {
		return v.reject(fn.Pos, "function name %q is not allowed", fn.Name)
	}
	if v.caps.Has(fn.Name) || v.utils.Has(fn.Name) {
		return v.reject(fn.Pos, "function %q shadows a built-in function", fn.Name)
	}
	for _, p := range fn.Params {
		if !v.checkName(p.Pos, p.Name) {
			return false
		}
	}
	return true
}
