package pred

import (
	"fmt"

	"github.com/lunfardo314/lsig/lsig/txn"
	"github.com/lunfardo314/lsig/util/lines"
)

type (
	// CaseDef is an entry of the dispatch table before composition. The body is built only
	// after the group size is known, so every indexed read inside it is covered by the guard
	CaseDef struct {
		size int
		body func(g ProvenGroup) Predicate
	}

	// Branch is a composed case: discriminant 'group size == Size' and a body which itself
	// starts with the same assertion
	Branch struct {
		size int
		body Predicate
	}

	// Program is the top level predicate: a closed table of mutually exclusive branches
	// selected by group size. A group of any other size is rejected
	Program struct {
		name     string
		branches []Branch
	}

	evalContext struct {
		group txn.Group
		self  int
	}
)

// Case declares the branch for groups of exactly 'size' transactions
func Case(size int, body func(g ProvenGroup) Predicate) CaseDef {
	return CaseDef{size: size, body: body}
}

// NewProgram composes the dispatch table and checks it. The program is immutable afterwards
func NewProgram(name string, cases ...CaseDef) (*Program, error) {
	if len(cases) == 0 {
		return nil, newCompositionError(name, "program must have at least one case")
	}
	ret := &Program{
		name:     name,
		branches: make([]Branch, 0, len(cases)),
	}
	seen := make(map[int]struct{})
	for _, c := range cases {
		if c.size < 1 || c.size > txn.MaxGroupSize {
			return nil, newCompositionError(name, "case group size %d is out of range [1,%d]", c.size, txn.MaxGroupSize)
		}
		if _, dup := seen[c.size]; dup {
			return nil, newCompositionError(name, "duplicate case for group size %d: cases must be mutually exclusive", c.size)
		}
		seen[c.size] = struct{}{}
		if c.body == nil {
			return nil, newCompositionError(name, "case for group size %d has no body", c.size)
		}
		body := c.body(ProvenGroup{size: c.size})
		if body == nil {
			return nil, newCompositionError(name, "case for group size %d returned nil body", c.size)
		}
		if err := checkPredicate(body, c.size); err != nil {
			return nil, newCompositionError(name, "case for group size %d: %v", c.size, err)
		}
		ret.branches = append(ret.branches, Branch{
			size: c.size,
			body: And(SizeEquals(c.size), body),
		})
	}
	return ret, nil
}

func (p *Program) Name() string {
	return p.name
}

// Branches returns the dispatch table in evaluation order
func (p *Program) Branches() []Branch {
	return append([]Branch(nil), p.branches...)
}

// Sizes returns group sizes accepted by the program, in evaluation order
func (p *Program) Sizes() []int {
	ret := make([]int, len(p.branches))
	for i := range p.branches {
		ret[i] = p.branches[i].size
	}
	return ret
}

func (b Branch) Size() int {
	return b.size
}

// Discriminant returns the predicate which selects the branch
func (b Branch) Discriminant() *GroupSizeEquals {
	return SizeEquals(b.size)
}

func (b Branch) Body() Predicate {
	return b.body
}

// Run evaluates the program for the transaction at index 'self' of the group. Discriminants are evaluated
// in order and the body of the first matching one is the result. No match means rejection.
// Error means the evaluation would fail in the execution environment, i.e. the group is rejected too
func (p *Program) Run(group txn.Group, self int) (bool, error) {
	if err := group.CheckAuthorizing(self); err != nil {
		return false, err
	}
	ctx := &evalContext{group: group, self: self}
	for _, b := range p.branches {
		match, err := b.Discriminant().eval(ctx)
		if err != nil {
			return false, err
		}
		if match {
			return b.body.eval(ctx)
		}
	}
	return false, nil
}

// Evaluate is Run which fails closed: any error is rejection
func (p *Program) Evaluate(group txn.Group, self int) bool {
	ret, err := p.Run(group, self)
	return err == nil && ret
}

func (p *Program) Lines(prefix ...string) *lines.Lines {
	ln := lines.New(prefix...)
	ln.Add("program %s", p.name)
	for _, b := range p.branches {
		ln.Add("   case %s:", b.Discriminant())
		ln.Add("      %s", b.body)
	}
	ln.Add("   default: reject")
	return ln
}

func (p *Program) String() string {
	return p.Lines().String()
}

// checkPredicate checks structural rules of the branch body: indexed reads must be below the
// proven group size and comparisons must be well typed
func checkPredicate(p Predicate, size int) error {
	switch p := p.(type) {
	case *Bool:
		return nil
	case *GroupSizeEquals:
		return nil
	case *Compare:
		if err := checkOperand(p.lhs, size); err != nil {
			return err
		}
		if err := checkOperand(p.rhs, size); err != nil {
			return err
		}
		if p.lhs.Kind() != p.rhs.Kind() {
			return fmt.Errorf("'%s': operands are of different kinds %s and %s", p, p.lhs.Kind(), p.rhs.Kind())
		}
		switch p.op {
		case OpEqual:
		case OpLessEqual:
			if p.lhs.Kind() != txn.KindUint {
				return fmt.Errorf("'%s': '<=' requires uint64 operands", p)
			}
		default:
			return fmt.Errorf("'%s': unknown comparison", p)
		}
		return nil
	case *Conjunction:
		return checkAll(p.children, size)
	case *Disjunction:
		return checkAll(p.children, size)
	case nil:
		return fmt.Errorf("nil predicate")
	}
	return fmt.Errorf("unsupported predicate type %T", p)
}

func checkAll(ps []Predicate, size int) error {
	for _, c := range ps {
		if err := checkPredicate(c, size); err != nil {
			return err
		}
	}
	return nil
}

func checkOperand(o Operand, size int) error {
	switch o := o.(type) {
	case *Literal, *GlobalRef:
		return nil
	case *FieldRef:
		if !o.field.Valid() {
			return fmt.Errorf("'%s': unknown field", o)
		}
		if o.field.IsArray() && o.arg < 0 {
			return fmt.Errorf("'%s': negative argument index", o)
		}
		if !o.sel.current && (o.sel.index < 0 || o.sel.index >= size) {
			return fmt.Errorf("'%s': transaction index %d is not guaranteed by group size %d", o, o.sel.index, size)
		}
		return nil
	case nil:
		return fmt.Errorf("nil operand")
	}
	return fmt.Errorf("unsupported operand type %T", o)
}
