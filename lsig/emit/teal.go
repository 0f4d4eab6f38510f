package emit

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/lunfardo314/lsig/lsig/pred"
	"github.com/lunfardo314/lsig/lsig/txn"
	"github.com/lunfardo314/lsig/util/lines"
)

// TEALEmitter renders the program as TEAL assembly text. It does not assemble it
type TEALEmitter struct {
	*ConfigOptions
}

const BackendTEAL = "teal"

func NewTEAL(opts ...ConfigOption) *TEALEmitter {
	return &TEALEmitter{ConfigOptions: configOptions(opts...)}
}

func (e *TEALEmitter) Name() string {
	return BackendTEAL
}

func (e *TEALEmitter) Emit(ctx context.Context, p *pred.Program, target Target) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, newEmitterError(BackendTEAL, err)
	}
	src, err := TEALSource(p, target.Version)
	if err != nil {
		return nil, newEmitterError(BackendTEAL, err)
	}
	if len(src) > e.maxSourceSize {
		return nil, newEmitterError(BackendTEAL, fmt.Errorf("source size %d exceeds maximum %d", len(src), e.maxSourceSize))
	}
	e.log.Debugf("emitted TEAL for '%s': %d bytes, target %s", p.Name(), len(src), target)
	return newArtifact(p, BackendTEAL, target, src, nil), nil
}

// TEALSource renders the program. Branches are a jump table selected by group size, in the order of cases.
// Falling through the table is 'err', i.e. a group of any other size is rejected
func TEALSource(p *pred.Program, version int) (string, error) {
	w := &tealWriter{ln: lines.New()}
	w.op("#pragma version %d", version)
	branches := p.Branches()
	for _, b := range branches {
		if err := w.predicate(b.Discriminant()); err != nil {
			return "", err
		}
		w.op("bnz %s", caseLabel(b.Size()))
	}
	w.op("err")
	for _, b := range branches {
		w.op("%s:", caseLabel(b.Size()))
		if err := w.predicate(b.Body()); err != nil {
			return "", err
		}
		w.op("return")
	}
	return w.ln.String(), nil
}

func caseLabel(size int) string {
	return "case_" + strconv.Itoa(size)
}

type tealWriter struct {
	ln *lines.Lines
}

func (w *tealWriter) op(format string, args ...any) {
	w.ln.Add(format, args...)
}

func (w *tealWriter) predicate(p pred.Predicate) error {
	switch p := p.(type) {
	case *pred.Bool:
		if p.Value() {
			w.op("int 1")
		} else {
			w.op("int 0")
		}
	case *pred.GroupSizeEquals:
		w.op("global GroupSize")
		w.op("int %d", p.N())
		w.op("==")
	case *pred.Compare:
		if err := w.operand(p.Lhs()); err != nil {
			return err
		}
		if err := w.operand(p.Rhs()); err != nil {
			return err
		}
		w.op("%s", p.Op())
	case *pred.Conjunction:
		return w.fold(p.Children(), "&&", "int 1")
	case *pred.Disjunction:
		return w.fold(p.Children(), "||", "int 0")
	default:
		return fmt.Errorf("can't render predicate %T", p)
	}
	return nil
}

// fold renders children joined with the binary operator. Empty list is the neutral element
func (w *tealWriter) fold(children []pred.Predicate, op, neutral string) error {
	if len(children) == 0 {
		w.op("%s", neutral)
		return nil
	}
	for i, c := range children {
		if err := w.predicate(c); err != nil {
			return err
		}
		if i > 0 {
			w.op("%s", op)
		}
	}
	return nil
}

func (w *tealWriter) operand(o pred.Operand) error {
	switch o := o.(type) {
	case *pred.Literal:
		w.literal(o)
	case *pred.GlobalRef:
		w.op("global %s", o.Global())
	case *pred.FieldRef:
		sel := o.Selector()
		switch {
		case o.Field().IsArray() && sel.IsCurrent():
			w.op("txna %s %d", o.Field(), o.ArgIndex())
		case o.Field().IsArray():
			w.op("gtxna %d %s %d", sel.Index(), o.Field(), o.ArgIndex())
		case sel.IsCurrent():
			w.op("txn %s", o.Field())
		default:
			w.op("gtxn %d %s", sel.Index(), o.Field())
		}
	default:
		return fmt.Errorf("can't render operand %T", o)
	}
	return nil
}

func (w *tealWriter) literal(l *pred.Literal) {
	v := l.Value()
	if v.Kind == txn.KindUint {
		if l.Hint() == pred.HintTypeEnum {
			if _, ok := txn.TxTypeOf(v.Uint); ok {
				w.op("int %s", l.TxType())
				return
			}
		}
		w.op("int %d", v.Uint)
		return
	}
	switch l.Hint() {
	case pred.HintAddress:
		if len(v.Bytes) == 32 {
			w.op("addr %s", l.Address())
			return
		}
	case pred.HintBase64:
		if len(v.Bytes) > 0 {
			w.op("byte base64 %s", base64.StdEncoding.EncodeToString(v.Bytes))
			return
		}
	case pred.HintText:
		if pred.IsPrintableText(v.Bytes) {
			w.op("byte %q", string(v.Bytes))
			return
		}
	}
	if len(v.Bytes) == 0 {
		w.op(`byte ""`)
		return
	}
	w.op("byte 0x%s", hex.EncodeToString(v.Bytes))
}
