package params

import (
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/util"
	"github.com/lunfardo314/lsig/util/lines"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// Def declares one template parameter.
	// Parameter with Default == nil has no default and must be supplied by overrides.
	// Required parameters must never have a default
	Def struct {
		Name        string
		Kind        Kind
		Encoding    Encoding
		Required    bool
		Default     any
		Description string
	}

	// Schema is ordered list of parameter declarations of a template
	Schema []Def

	// Set is a fully resolved, immutable parameter set. It exists only if every parameter of the schema was resolved
	Set struct {
		names      []string
		values     map[string]Literal
		overridden map[string]struct{}
	}
)

// Bind resolves every parameter of the schema: defaults first, then each override source in order.
// Unknown override names, malformed values and unresolved parameters are errors. Either all parameters
// are bound or none
func Bind(schema Schema, overrides ...Source) (*Set, error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}
	raw := make(map[string]any)
	for _, d := range schema {
		if d.Default != nil {
			raw[d.Name] = d.Default
		}
	}
	overridden := make(map[string]struct{})
	for _, src := range overrides {
		if src == nil {
			continue
		}
		values, err := src.Values()
		if err != nil {
			return nil, err
		}
		keys := maps.Keys(values)
		slices.Sort(keys)
		for _, k := range keys {
			if _, found := schema.Lookup(k); !found {
				return nil, newParameterError(k, "unknown parameter. Known parameters: %s", strings.Join(schema.Names(), ", "))
			}
			raw[k] = values[k]
			overridden[k] = struct{}{}
		}
	}

	ret := &Set{
		names:      schema.Names(),
		values:     make(map[string]Literal, len(schema)),
		overridden: overridden,
	}
	for _, d := range schema {
		v, found := raw[d.Name]
		if !found || v == nil {
			return nil, newParameterError(d.Name, "required parameter is missing")
		}
		lit, err := decodeLiteral(d.Kind, d.Encoding, v)
		if err != nil {
			return nil, newParameterError(d.Name, "malformed %s value: %v", d.Kind, err)
		}
		ret.values[d.Name] = lit
	}
	return ret, nil
}

// MustBind is Bind which panics on error. For parameter sets known to be valid
func MustBind(schema Schema, overrides ...Source) *Set {
	ret, err := Bind(schema, overrides...)
	util.AssertNoError(err)
	return ret
}

// Check checks the schema itself: unique non-empty names, known kinds and consistent defaults
func (s Schema) Check() error {
	seen := make(map[string]struct{})
	for _, d := range s {
		if d.Name == "" {
			return newParameterError("", "parameter with empty name in the schema")
		}
		if _, dup := seen[d.Name]; dup {
			return newParameterError(d.Name, "parameter declared twice")
		}
		seen[d.Name] = struct{}{}
		if d.Kind > KindBytes {
			return newParameterError(d.Name, "unknown kind %s", d.Kind)
		}
		if d.Required && d.Default != nil {
			return newParameterError(d.Name, "required parameter can't have a default")
		}
		if d.Default != nil {
			if _, err := decodeLiteral(d.Kind, d.Encoding, d.Default); err != nil {
				return newParameterError(d.Name, "malformed default: %v", err)
			}
		}
	}
	return nil
}

func (s Schema) Lookup(name string) (Def, bool) {
	for _, d := range s {
		if d.Name == name {
			return d, true
		}
	}
	return Def{}, false
}

func (s Schema) Names() []string {
	ret := make([]string, len(s))
	for i := range s {
		ret[i] = s[i].Name
	}
	return ret
}

// WithDefaults returns a copy of the schema with defaults replaced by the values.
// Parameters not in the map keep their defaults
func (s Schema) WithDefaults(values map[string]any) Schema {
	ret := slices.Clone(s)
	for i := range ret {
		if v, ok := values[ret[i].Name]; ok {
			ret[i].Default = v
			ret[i].Required = false
		}
	}
	return ret
}

func (s Schema) Lines(prefix ...string) *lines.Lines {
	ln := lines.New(prefix...)
	for _, d := range s {
		def := "required"
		if d.Default != nil {
			def = fmt.Sprintf("default: %v", d.Default)
		}
		kind := d.Kind.String()
		if d.Kind == KindBytes {
			kind += "/" + d.Encoding.String()
		}
		ln.Add("%s (%s, %s) %s", d.Name, kind, def, d.Description)
	}
	return ln
}

func (p *Set) Names() []string {
	return slices.Clone(p.names)
}

func (p *Set) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Literal returns the bound value. Panics if the parameter is not in the set
func (p *Set) Literal(name string) Literal {
	ret, ok := p.values[name]
	util.Assertf(ok, "parameter '%s' is not in the set", name)
	return Literal{Kind: ret.Kind, Uint: ret.Uint, Bytes: slices.Clone(ret.Bytes)}
}

func (p *Set) Uint(name string) uint64 {
	ret := p.Literal(name)
	util.Assertf(ret.Kind == KindUint, "parameter '%s' is %s, not uint", name, ret.Kind)
	return ret.Uint
}

func (p *Set) Address(name string) types.Address {
	ret := p.Literal(name)
	util.Assertf(ret.Kind == KindAddress, "parameter '%s' is %s, not address", name, ret.Kind)
	return ret.Address()
}

func (p *Set) Bytes(name string) []byte {
	ret := p.Literal(name)
	util.Assertf(ret.Kind == KindBytes, "parameter '%s' is %s, not bytes", name, ret.Kind)
	return ret.Bytes
}

// Flag interprets uint parameter as boolean switch: 0 is off, anything else is on
func (p *Set) Flag(name string) bool {
	return p.Uint(name) != 0
}

// Literals returns copy of all bound values
func (p *Set) Literals() map[string]Literal {
	ret := make(map[string]Literal, len(p.values))
	for _, n := range p.names {
		ret[n] = p.Literal(n)
	}
	return ret
}

// Overridden returns sorted names of the parameters whose values came from override sources
func (p *Set) Overridden() []string {
	ret := maps.Keys(p.overridden)
	slices.Sort(ret)
	return ret
}

func (p *Set) Lines(prefix ...string) *lines.Lines {
	ln := lines.New(prefix...)
	for _, n := range p.names {
		suffix := ""
		if _, ok := p.overridden[n]; ok {
			suffix = " (override)"
		}
		ln.Add("%s = %s%s", n, p.values[n], suffix)
	}
	return ln
}

func (p *Set) String() string {
	return p.Lines().String()
}
