package pred

import (
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/lsig/txn"
)

type (
	// Predicate is an immutable boolean expression over the transaction group
	Predicate interface {
		String() string
		eval(ctx *evalContext) (bool, error)
	}

	Op byte

	Bool struct {
		b bool
	}

	Compare struct {
		lhs, rhs Operand
		op       Op
	}

	Conjunction struct {
		children []Predicate
	}

	Disjunction struct {
		children []Predicate
	}

	GroupSizeEquals struct {
		n int
	}
)

const (
	OpEqual = Op(iota)
	OpLessEqual
)

func (op Op) String() string {
	switch op {
	case OpEqual:
		return "=="
	case OpLessEqual:
		return "<="
	}
	return fmt.Sprintf("op(%d)", op)
}

var (
	True  = &Bool{b: true}
	False = &Bool{b: false}
)

func (b *Bool) Value() bool {
	return b.b
}

func (b *Bool) String() string {
	if b.b {
		return "true"
	}
	return "false"
}

func (b *Bool) eval(_ *evalContext) (bool, error) {
	return b.b, nil
}

// Equals is exact equality of two operands of the same kind
func Equals(a, b Operand) *Compare {
	return &Compare{lhs: a, rhs: b, op: OpEqual}
}

// LessEquals is a <= b over uint64 operands
func LessEquals(a, b Operand) *Compare {
	return &Compare{lhs: a, rhs: b, op: OpLessEqual}
}

func (c *Compare) Lhs() Operand { return c.lhs }
func (c *Compare) Rhs() Operand { return c.rhs }
func (c *Compare) Op() Op       { return c.op }

func (c *Compare) String() string {
	return fmt.Sprintf("%s %s %s", c.lhs, c.op, c.rhs)
}

func (c *Compare) eval(ctx *evalContext) (bool, error) {
	a, err := c.lhs.eval(ctx)
	if err != nil {
		return false, err
	}
	b, err := c.rhs.eval(ctx)
	if err != nil {
		return false, err
	}
	if a.Kind != b.Kind {
		return false, fmt.Errorf("%s: operands of different kinds %s and %s", c, a.Kind, b.Kind)
	}
	switch c.op {
	case OpEqual:
		return a.Equal(b), nil
	case OpLessEqual:
		if a.Kind != txn.KindUint {
			return false, fmt.Errorf("%s: '<=' requires uint64 operands", c)
		}
		return a.Uint <= b.Uint, nil
	}
	return false, fmt.Errorf("unknown comparison %s", c.op)
}

// And is true iff all children are true. Children are evaluated left to right, all of them,
// and an error in any child fails the whole expression. And() is true
func And(children ...Predicate) *Conjunction {
	return &Conjunction{children: append([]Predicate(nil), children...)}
}

// Or is true iff at least one child is true. All children are evaluated. Or() is false
func Or(children ...Predicate) *Disjunction {
	return &Disjunction{children: append([]Predicate(nil), children...)}
}

func (a *Conjunction) Children() []Predicate {
	return append([]Predicate(nil), a.children...)
}

func (a *Conjunction) String() string {
	return "and(" + joinPredicates(a.children) + ")"
}

func (a *Conjunction) eval(ctx *evalContext) (bool, error) {
	ret := true
	for _, c := range a.children {
		res, err := c.eval(ctx)
		if err != nil {
			return false, err
		}
		ret = ret && res
	}
	return ret, nil
}

func (o *Disjunction) Children() []Predicate {
	return append([]Predicate(nil), o.children...)
}

func (o *Disjunction) String() string {
	return "or(" + joinPredicates(o.children) + ")"
}

func (o *Disjunction) eval(ctx *evalContext) (bool, error) {
	ret := false
	for _, c := range o.children {
		res, err := c.eval(ctx)
		if err != nil {
			return false, err
		}
		ret = ret || res
	}
	return ret, nil
}

func SizeEquals(n int) *GroupSizeEquals {
	return &GroupSizeEquals{n: n}
}

func (g *GroupSizeEquals) N() int {
	return g.n
}

func (g *GroupSizeEquals) String() string {
	return fmt.Sprintf("global.GroupSize == %d", g.n)
}

func (g *GroupSizeEquals) eval(ctx *evalContext) (bool, error) {
	return ctx.group.Size() == g.n, nil
}

// In is true iff the operand is equal to one of the set elements. Expands to Or of Equals
func In(v Operand, set ...Operand) *Disjunction {
	children := make([]Predicate, len(set))
	for i, el := range set {
		children[i] = Equals(v, el)
	}
	return Or(children...)
}

// IsZeroAddress requires the address field to be the all-zero address
func IsZeroAddress(v Operand) *Compare {
	return Equals(v, GlobalZeroAddress())
}

// NoRedirect forbids every way of redirecting control or remaining funds of the account:
// rekeying, closing the remainder and closing the asset holding
func NoRedirect(t TxnRef) *Conjunction {
	return And(
		IsZeroAddress(t.RekeyTo()),
		IsZeroAddress(t.CloseRemainderTo()),
		IsZeroAddress(t.AssetCloseTo()),
	)
}

// IsType checks transaction type
func IsType(t TxnRef, tp types.TxType) *Compare {
	return Equals(t.TypeEnum(), TypeEnum(tp))
}

func joinPredicates(ps []Predicate) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.String()
	}
	return strings.Join(s, ", ")
}
