package txn

import (
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// Field enumerates transaction fields readable by predicates. Names are the ones used by `txn` and `gtxn`
type Field byte

const (
	Sender Field = iota
	Fee
	FirstValid
	LastValid
	Lease
	Receiver
	Amount
	CloseRemainderTo
	TypeEnum
	XferAsset
	AssetAmount
	AssetSender
	AssetReceiver
	AssetCloseTo
	GroupIndex
	ApplicationID
	OnCompletion
	NumAppArgs
	RekeyTo
	// ApplicationArgs is the only array field. It is read with an argument index
	ApplicationArgs

	numFields
)

type fieldSpec struct {
	name    string
	kind    Kind
	isArray bool
}

var fieldSpecs = [numFields]fieldSpec{
	Sender:           {"Sender", KindBytes, false},
	Fee:              {"Fee", KindUint, false},
	FirstValid:       {"FirstValid", KindUint, false},
	LastValid:        {"LastValid", KindUint, false},
	Lease:            {"Lease", KindBytes, false},
	Receiver:         {"Receiver", KindBytes, false},
	Amount:           {"Amount", KindUint, false},
	CloseRemainderTo: {"CloseRemainderTo", KindBytes, false},
	TypeEnum:         {"TypeEnum", KindUint, false},
	XferAsset:        {"XferAsset", KindUint, false},
	AssetAmount:      {"AssetAmount", KindUint, false},
	AssetSender:      {"AssetSender", KindBytes, false},
	AssetReceiver:    {"AssetReceiver", KindBytes, false},
	AssetCloseTo:     {"AssetCloseTo", KindBytes, false},
	GroupIndex:       {"GroupIndex", KindUint, false},
	ApplicationID:    {"ApplicationID", KindUint, false},
	OnCompletion:     {"OnCompletion", KindUint, false},
	NumAppArgs:       {"NumAppArgs", KindUint, false},
	RekeyTo:          {"RekeyTo", KindBytes, false},
	ApplicationArgs:  {"ApplicationArgs", KindBytes, true},
}

func (f Field) Valid() bool {
	return f < numFields
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", f)
	}
	return fieldSpecs[f].name
}

func (f Field) Kind() Kind {
	return fieldSpecs[f].kind
}

func (f Field) IsArray() bool {
	return f.Valid() && fieldSpecs[f].isArray
}

func FieldByName(name string) (Field, bool) {
	for i := range fieldSpecs {
		if fieldSpecs[i].name == name {
			return Field(i), true
		}
	}
	return 0, false
}

// type enum codes, as exposed by the TypeEnum field

const (
	TypeEnumUnknown = uint64(iota)
	TypeEnumPayment
	TypeEnumKeyRegistration
	TypeEnumAssetConfig
	TypeEnumAssetTransfer
	TypeEnumAssetFreeze
	TypeEnumApplicationCall
)

var typeEnums = []struct {
	tp   types.TxType
	code uint64
}{
	{types.PaymentTx, TypeEnumPayment},
	{types.KeyRegistrationTx, TypeEnumKeyRegistration},
	{types.AssetConfigTx, TypeEnumAssetConfig},
	{types.AssetTransferTx, TypeEnumAssetTransfer},
	{types.AssetFreezeTx, TypeEnumAssetFreeze},
	{types.ApplicationCallTx, TypeEnumApplicationCall},
}

// TypeEnumOf returns type enum code of the transaction type. Unknown types have code 0
func TypeEnumOf(tp types.TxType) uint64 {
	for _, te := range typeEnums {
		if te.tp == tp {
			return te.code
		}
	}
	return TypeEnumUnknown
}

// TxTypeOf is the inverse of TypeEnumOf
func TxTypeOf(code uint64) (types.TxType, bool) {
	for _, te := range typeEnums {
		if te.code == code {
			return te.tp, true
		}
	}
	return "", false
}

func addressValue(addr types.Address) Value {
	return BytesValue(addr[:])
}

// Read returns value of the scalar field of the transaction. groupIndex is the position of the
// transaction in its group. Fields irrelevant for the transaction type return zero values
func Read(tx *types.Transaction, groupIndex int, f Field) Value {
	switch f {
	case Sender:
		return addressValue(tx.Sender)
	case Fee:
		return UintValue(uint64(tx.Fee))
	case FirstValid:
		return UintValue(uint64(tx.FirstValid))
	case LastValid:
		return UintValue(uint64(tx.LastValid))
	case Lease:
		return BytesValue(tx.Lease[:])
	case Receiver:
		return addressValue(tx.Receiver)
	case Amount:
		return UintValue(uint64(tx.Amount))
	case CloseRemainderTo:
		return addressValue(tx.CloseRemainderTo)
	case TypeEnum:
		return UintValue(TypeEnumOf(tx.Type))
	case XferAsset:
		return UintValue(uint64(tx.XferAsset))
	case AssetAmount:
		return UintValue(tx.AssetAmount)
	case AssetSender:
		return addressValue(tx.AssetSender)
	case AssetReceiver:
		return addressValue(tx.AssetReceiver)
	case AssetCloseTo:
		return addressValue(tx.AssetCloseTo)
	case GroupIndex:
		return UintValue(uint64(groupIndex))
	case ApplicationID:
		return UintValue(uint64(tx.ApplicationID))
	case OnCompletion:
		return UintValue(uint64(tx.OnCompletion))
	case NumAppArgs:
		return UintValue(uint64(len(tx.ApplicationArgs)))
	case RekeyTo:
		return addressValue(tx.RekeyTo)
	}
	panic(fmt.Sprintf("txn.Read: not a scalar field %s", f))
}

// ReadArg returns element of the array field. Index out of range is an error
func ReadArg(tx *types.Transaction, f Field, idx int) (Value, error) {
	if f != ApplicationArgs {
		return Value{}, fmt.Errorf("txn.ReadArg: not an array field %s", f)
	}
	if idx < 0 || idx >= len(tx.ApplicationArgs) {
		return Value{}, fmt.Errorf("%s index %d out of range: transaction has %d argument(s)", f, idx, len(tx.ApplicationArgs))
	}
	return BytesValue(tx.ApplicationArgs[idx]), nil
}
