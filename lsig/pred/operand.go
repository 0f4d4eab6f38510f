package pred

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"unicode"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/lsig/txn"
)

type (
	// Operand is a value-producing node: literal, transaction field or global value
	Operand interface {
		Kind() txn.Kind
		String() string
		eval(ctx *evalContext) (txn.Value, error)
	}

	// Hint tells emitters how literal was written by the author. It does not affect semantics
	Hint byte

	Literal struct {
		value txn.Value
		hint  Hint
	}

	// Selector selects a transaction: either the one being authorized or one at constant index in the group
	Selector struct {
		current bool
		index   int
	}

	FieldRef struct {
		sel   Selector
		field txn.Field
		arg   int
	}

	Global byte

	GlobalRef struct {
		g Global
	}
)

const (
	HintNone = Hint(iota)
	HintAddress
	HintText
	HintBase64
	HintTypeEnum
)

const (
	GroupSize = Global(iota)
	ZeroAddress
)

// Int is a uint64 literal
func Int(v uint64) *Literal {
	return &Literal{value: txn.UintValue(v)}
}

// Addr is a 32-byte address literal
func Addr(addr types.Address) *Literal {
	return &Literal{value: txn.BytesValue(addr[:]), hint: HintAddress}
}

// Bytes is a byte string literal
func Bytes(data []byte) *Literal {
	return &Literal{value: txn.BytesValue(data)}
}

// Base64 is a byte string literal which was supplied base64-encoded
func Base64(data []byte) *Literal {
	return &Literal{value: txn.BytesValue(data), hint: HintBase64}
}

// Text is a byte string literal written as text
func Text(s string) *Literal {
	return &Literal{value: txn.BytesValue([]byte(s)), hint: HintText}
}

// TypeEnum is a type enum literal, to be compared with TypeEnum field
func TypeEnum(tp types.TxType) *Literal {
	code := txn.TypeEnumOf(tp)
	return &Literal{value: txn.UintValue(code), hint: HintTypeEnum}
}

func (l *Literal) Kind() txn.Kind {
	return l.value.Kind
}

func (l *Literal) Value() txn.Value {
	return txn.Value{Kind: l.value.Kind, Uint: l.value.Uint, Bytes: bytes.Clone(l.value.Bytes)}
}

func (l *Literal) Hint() Hint {
	return l.hint
}

// Address returns the literal as address. Only meaningful with HintAddress
func (l *Literal) Address() (ret types.Address) {
	copy(ret[:], l.value.Bytes)
	return
}

// TxType returns transaction type of the type enum literal
func (l *Literal) TxType() types.TxType {
	ret, _ := txn.TxTypeOf(l.value.Uint)
	return ret
}

func (l *Literal) String() string {
	switch l.hint {
	case HintAddress:
		if len(l.value.Bytes) == len(types.Address{}) {
			return l.Address().String()
		}
	case HintText:
		if IsPrintableText(l.value.Bytes) {
			return strconv.Quote(string(l.value.Bytes))
		}
	case HintBase64:
		return "base64(" + base64.StdEncoding.EncodeToString(l.value.Bytes) + ")"
	case HintTypeEnum:
		if tp, ok := txn.TxTypeOf(l.value.Uint); ok {
			return string(tp)
		}
	}
	return l.value.String()
}

func (l *Literal) eval(_ *evalContext) (txn.Value, error) {
	return l.value, nil
}

// IsPrintableText is true if data can be written as a quoted string without escapes
func IsPrintableText(data []byte) bool {
	for _, b := range data {
		if b >= unicode.MaxASCII || !unicode.IsPrint(rune(b)) || b == '"' || b == '\\' {
			return false
		}
	}
	return true
}

func (s Selector) IsCurrent() bool {
	return s.current
}

// Index of the transaction in the group. Meaningless for the current transaction
func (s Selector) Index() int {
	return s.index
}

func (s Selector) String() string {
	if s.current {
		return "txn"
	}
	return fmt.Sprintf("gtxn[%d]", s.index)
}

func (r *FieldRef) Kind() txn.Kind {
	return r.field.Kind()
}

func (r *FieldRef) Selector() Selector {
	return r.sel
}

func (r *FieldRef) Field() txn.Field {
	return r.field
}

// ArgIndex returns index in the array field
func (r *FieldRef) ArgIndex() int {
	return r.arg
}

func (r *FieldRef) String() string {
	if r.field.IsArray() {
		return fmt.Sprintf("%s.%s[%d]", r.sel, r.field, r.arg)
	}
	return fmt.Sprintf("%s.%s", r.sel, r.field)
}

func (r *FieldRef) eval(ctx *evalContext) (txn.Value, error) {
	idx := ctx.self
	if !r.sel.current {
		idx = r.sel.index
	}
	tx, err := ctx.group.At(idx)
	if err != nil {
		return txn.Value{}, err
	}
	if r.field.IsArray() {
		return txn.ReadArg(tx, r.field, r.arg)
	}
	return txn.Read(tx, idx, r.field), nil
}

func (g Global) String() string {
	switch g {
	case GroupSize:
		return "GroupSize"
	case ZeroAddress:
		return "ZeroAddress"
	}
	return fmt.Sprintf("global(%d)", g)
}

func (r *GlobalRef) Global() Global {
	return r.g
}

func (r *GlobalRef) Kind() txn.Kind {
	if r.g == ZeroAddress {
		return txn.KindBytes
	}
	return txn.KindUint
}

func (r *GlobalRef) String() string {
	return "global." + r.g.String()
}

var zeroAddress types.Address

func (r *GlobalRef) eval(ctx *evalContext) (txn.Value, error) {
	switch r.g {
	case GroupSize:
		return txn.UintValue(uint64(ctx.group.Size())), nil
	case ZeroAddress:
		return txn.BytesValue(zeroAddress[:]), nil
	}
	return txn.Value{}, fmt.Errorf("unknown global %s", r.g)
}

// GlobalGroupSize is the number of transactions in the group being evaluated
func GlobalGroupSize() *GlobalRef {
	return &GlobalRef{g: GroupSize}
}

// GlobalZeroAddress is the canonical all-zero address
func GlobalZeroAddress() *GlobalRef {
	return &GlobalRef{g: ZeroAddress}
}
