package emit

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/lsig/lsig/pred"
	"github.com/lunfardo314/lsig/lsig/txn"
	"github.com/lunfardo314/lsig/util"
)

// EasyFLEmitter translates the program into an EasyFL formula over embedded transaction
// accessor functions and compiles it to EasyFL bytecode
type EasyFLEmitter struct {
	*ConfigOptions
}

const (
	BackendEasyFL = "easyfl"

	// maximum number of arguments of EasyFL function call
	maxCallArgs = 15
)

// DataContext is passed to the embedded accessor functions during evaluation
type DataContext struct {
	group txn.Group
	self  int
}

func NewEasyFL(opts ...ConfigOption) *EasyFLEmitter {
	return &EasyFLEmitter{ConfigOptions: configOptions(opts...)}
}

func (e *EasyFLEmitter) Name() string {
	return BackendEasyFL
}

func (e *EasyFLEmitter) Emit(ctx context.Context, p *pred.Program, target Target) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, newEmitterError(BackendEasyFL, err)
	}
	src, err := EasyFLSource(p)
	if err != nil {
		return nil, newEmitterError(BackendEasyFL, err)
	}
	if len(src) > e.maxSourceSize {
		return nil, newEmitterError(BackendEasyFL, fmt.Errorf("source size %d exceeds maximum %d", len(src), e.maxSourceSize))
	}
	var bytecode []byte
	err = util.CatchPanicOrError(func() error {
		var err1 error
		_, _, bytecode, err1 = Library().CompileExpression(src)
		return err1
	})
	if err != nil {
		return nil, newEmitterError(BackendEasyFL, err)
	}
	if len(bytecode) > e.maxProgramSize {
		return nil, newEmitterError(BackendEasyFL, fmt.Errorf("program size %d exceeds maximum %d", len(bytecode), e.maxProgramSize))
	}
	e.log.Debugf("compiled EasyFL for '%s': source %d bytes, bytecode %d bytes", p.Name(), len(src), len(bytecode))
	return newArtifact(p, BackendEasyFL, target, src, bytecode), nil
}

// EvalEasyFL runs the artifact bytecode in the EasyFL engine for the transaction at index 'self' of the group.
// It is the offline cross-check of the compiled form against the direct evaluation of the program
func EvalEasyFL(a *Artifact, group txn.Group, self int) (bool, error) {
	util.Assertf(a.Backend == BackendEasyFL, "not an EasyFL artifact: '%s'", a.Backend)
	if err := group.CheckAuthorizing(self); err != nil {
		return false, err
	}
	var res []byte
	err := util.CatchPanicOrError(func() error {
		var err1 error
		res, err1 = Library().EvalFromBytecode(easyfl.NewGlobalDataNoTrace(&DataContext{group: group, self: self}), a.Bytecode)
		return err1
	})
	if err != nil {
		return false, err
	}
	return len(res) > 0, nil
}

var (
	libraryOnce sync.Once
	library     *easyfl.Library
)

// Library is the EasyFL base library extended with the transaction accessors
func Library() *easyfl.Library {
	libraryOnce.Do(func() {
		lib := easyfl.NewBaseLibrary()
		err := lib.UpgradeFromYAML([]byte(_accessorsYAML), embeddedFunctionResolver(lib))
		util.AssertNoError(err, "EasyFL library")
		library = lib
	})
	return library
}

func embeddedFunctionResolver(lib *easyfl.Library) func(sym string) easyfl.EmbeddedFunction {
	baseResolver := easyfl.EmbeddedFunctions(lib)
	return func(sym string) easyfl.EmbeddedFunction {
		if ret, found := _accessors[sym]; found {
			return ret
		}
		return baseResolver(sym)
	}
}

var _accessors = map[string]easyfl.EmbeddedFunction{
	"txnField":    evalTxnField,
	"gtxnField":   evalGtxnField,
	"txnArg":      evalTxnArg,
	"gtxnArg":     evalGtxnArg,
	"groupSize":   evalGroupSize,
	"zeroAddress": evalZeroAddress,
}

const _accessorsYAML = `
functions:
   -
      sym: txnField
      description: "field $0 of the transaction being authorized"
      numArgs: 1
      embedded: true
   -
      sym: gtxnField
      description: "field $1 of the transaction at index $0 in the group"
      numArgs: 2
      embedded: true
   -
      sym: txnArg
      description: "element $1 of the array field $0 of the transaction being authorized"
      numArgs: 2
      embedded: true
   -
      sym: gtxnArg
      description: "element $2 of the array field $1 of the transaction at index $0 in the group"
      numArgs: 3
      embedded: true
   -
      sym: groupSize
      description: "number of transactions in the group as 8-byte big-endian"
      numArgs: 0
      embedded: true
   -
      sym: zeroAddress
      description: "32 zero bytes"
      numArgs: 0
      embedded: true
`

// uint values are 8-byte big-endian in EasyFL, so lessOrEqualThan compares them numerically

func encodeValue(par *easyfl.CallParams, v txn.Value) []byte {
	if v.Kind == txn.KindUint {
		ret := par.Alloc(8)
		binary.BigEndian.PutUint64(ret, v.Uint)
		return ret
	}
	if len(v.Bytes) == 0 {
		return nil
	}
	return par.AllocData(v.Bytes...)
}

func byteArg(par *easyfl.CallParams, a []byte, what string) int {
	if len(a) != 1 {
		par.TracePanic("%s must be 1 byte long, got %d bytes", what, len(a))
	}
	return int(a[0])
}

func dataContext(par *easyfl.CallParams) *DataContext {
	ctx, ok := par.DataContext().(*DataContext)
	if !ok {
		par.TracePanic("wrong data context")
	}
	return ctx
}

func readField(par *easyfl.CallParams, idx int, f txn.Field) []byte {
	ctx := dataContext(par)
	if !f.Valid() || f.IsArray() {
		par.TracePanic("wrong scalar field %d", f)
	}
	tx, err := ctx.group.At(idx)
	if err != nil {
		par.TracePanic("%v", err)
	}
	return encodeValue(par, txn.Read(tx, idx, f))
}

func readArg(par *easyfl.CallParams, idx int, f txn.Field, i int) []byte {
	ctx := dataContext(par)
	if !f.IsArray() {
		par.TracePanic("wrong array field %d", f)
	}
	tx, err := ctx.group.At(idx)
	if err != nil {
		par.TracePanic("%v", err)
	}
	v, err := txn.ReadArg(tx, f, i)
	if err != nil {
		par.TracePanic("%v", err)
	}
	return encodeValue(par, v)
}

func evalTxnField(par *easyfl.CallParams) []byte {
	return readField(par, dataContext(par).self, txn.Field(byteArg(par, par.Arg(0), "field")))
}

func evalGtxnField(par *easyfl.CallParams) []byte {
	return readField(par, byteArg(par, par.Arg(0), "index"), txn.Field(byteArg(par, par.Arg(1), "field")))
}

func evalTxnArg(par *easyfl.CallParams) []byte {
	return readArg(par, dataContext(par).self, txn.Field(byteArg(par, par.Arg(0), "field")), byteArg(par, par.Arg(1), "argument index"))
}

func evalGtxnArg(par *easyfl.CallParams) []byte {
	return readArg(par, byteArg(par, par.Arg(0), "index"), txn.Field(byteArg(par, par.Arg(1), "field")), byteArg(par, par.Arg(2), "argument index"))
}

func evalGroupSize(par *easyfl.CallParams) []byte {
	return encodeValue(par, txn.UintValue(uint64(dataContext(par).group.Size())))
}

func evalZeroAddress(par *easyfl.CallParams) []byte {
	var zero [32]byte
	return par.AllocData(zero[:]...)
}

// EasyFLSource translates the program into EasyFL formula. Cond becomes nested 'if' with rejection as the
// last alternative, so a group of any other size evaluates to false
func EasyFLSource(p *pred.Program) (string, error) {
	ret := "not(1)"
	branches := p.Branches()
	for i := len(branches) - 1; i >= 0; i-- {
		disc, err := easyflPredicate(branches[i].Discriminant())
		if err != nil {
			return "", err
		}
		body, err := easyflPredicate(branches[i].Body())
		if err != nil {
			return "", err
		}
		ret = fmt.Sprintf("if(%s,%s,%s)", disc, body, ret)
	}
	return ret, nil
}

func easyflPredicate(p pred.Predicate) (string, error) {
	switch p := p.(type) {
	case *pred.Bool:
		if p.Value() {
			return "1", nil
		}
		return "not(1)", nil
	case *pred.GroupSizeEquals:
		return fmt.Sprintf("equal(groupSize,u64/%d)", p.N()), nil
	case *pred.Compare:
		lhs, err := easyflOperand(p.Lhs())
		if err != nil {
			return "", err
		}
		rhs, err := easyflOperand(p.Rhs())
		if err != nil {
			return "", err
		}
		switch p.Op() {
		case pred.OpEqual:
			return fmt.Sprintf("equal(%s,%s)", lhs, rhs), nil
		case pred.OpLessEqual:
			return fmt.Sprintf("lessOrEqualThan(%s,%s)", lhs, rhs), nil
		}
		return "", fmt.Errorf("unsupported comparison %s", p.Op())
	case *pred.Conjunction:
		return easyflFold("and", "1", p.Children())
	case *pred.Disjunction:
		return easyflFold("or", "not(1)", p.Children())
	}
	return "", fmt.Errorf("can't translate predicate %T", p)
}

// easyflFold calls the variadic function over children. Calls with more arguments than EasyFL allows
// are split into nested calls, which is the same for associative and/or
func easyflFold(fun, neutral string, children []pred.Predicate) (string, error) {
	if len(children) == 0 {
		return neutral, nil
	}
	args := make([]string, len(children))
	for i, c := range children {
		var err error
		if args[i], err = easyflPredicate(c); err != nil {
			return "", err
		}
	}
	for len(args) > maxCallArgs {
		next := make([]string, 0, len(args)/maxCallArgs+1)
		for i := 0; i < len(args); i += maxCallArgs {
			end := min(i+maxCallArgs, len(args))
			next = append(next, fun+"("+strings.Join(args[i:end], ",")+")")
		}
		args = next
	}
	return fun + "(" + strings.Join(args, ",") + ")", nil
}

func easyflOperand(o pred.Operand) (string, error) {
	switch o := o.(type) {
	case *pred.Literal:
		v := o.Value()
		if v.Kind == txn.KindUint {
			return "u64/" + strconv.FormatUint(v.Uint, 10), nil
		}
		if len(v.Bytes) == 0 {
			return "concat()", nil
		}
		return "0x" + hex.EncodeToString(v.Bytes), nil
	case *pred.GlobalRef:
		switch o.Global() {
		case pred.GroupSize:
			return "groupSize", nil
		case pred.ZeroAddress:
			return "zeroAddress", nil
		}
		return "", fmt.Errorf("unsupported global %s", o.Global())
	case *pred.FieldRef:
		sel := o.Selector()
		if sel.Index() > 255 || o.ArgIndex() > 255 {
			return "", fmt.Errorf("'%s': index does not fit one byte", o)
		}
		switch {
		case o.Field().IsArray() && sel.IsCurrent():
			return fmt.Sprintf("txnArg(%d,%d)", byte(o.Field()), o.ArgIndex()), nil
		case o.Field().IsArray():
			return fmt.Sprintf("gtxnArg(%d,%d,%d)", sel.Index(), byte(o.Field()), o.ArgIndex()), nil
		case sel.IsCurrent():
			return fmt.Sprintf("txnField(%d)", byte(o.Field())), nil
		default:
			return fmt.Sprintf("gtxnField(%d,%d)", sel.Index(), byte(o.Field())), nil
		}
	}
	return "", fmt.Errorf("can't translate operand %T", o)
}
