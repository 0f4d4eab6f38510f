package txn

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
)

type (
	// Kind is the stack type of the value: every transaction field is either uint64 or a byte string
	Kind byte

	// Value is a typed field or literal value
	Value struct {
		Kind  Kind
		Uint  uint64
		Bytes []byte
	}
)

const (
	KindUint = Kind(iota)
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint64"
	case KindBytes:
		return "bytes"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func UintValue(v uint64) Value {
	return Value{Kind: KindUint, Uint: v}
}

func BytesValue(data []byte) Value {
	return Value{Kind: KindBytes, Bytes: bytes.Clone(data)}
}

// Equal is exact comparison. Values of different kinds are never equal
func (v Value) Equal(v1 Value) bool {
	if v.Kind != v1.Kind {
		return false
	}
	if v.Kind == KindUint {
		return v.Uint == v1.Uint
	}
	return bytes.Equal(v.Bytes, v1.Bytes)
}

func (v Value) String() string {
	if v.Kind == KindUint {
		return strconv.FormatUint(v.Uint, 10)
	}
	return fmt.Sprintf("0x%s", hex.EncodeToString(v.Bytes))
}
