package pred

import (
	"github.com/lunfardo314/lsig/lsig/txn"
)

type (
	// TxnRef gives typed read access to the fields of one transaction
	TxnRef struct {
		sel Selector
	}

	// ProvenGroup is the capability to read transactions by index. It exists only inside the body of
	// a Cond case, after the group size of the case has been asserted. There is no other way to
	// obtain an indexed TxnRef
	ProvenGroup struct {
		size int
	}
)

// Txn refers to the transaction being authorized. It is always present, so it needs no group size guard
var Txn = TxnRef{sel: Selector{current: true}}

func (g ProvenGroup) Size() int {
	return g.size
}

// Txn returns reference to transaction at index i. The index must be a constant below the proven size,
// otherwise the program is rejected at composition time
func (g ProvenGroup) Txn(i int) TxnRef {
	return TxnRef{sel: Selector{index: i}}
}

func (t TxnRef) Selector() Selector {
	return t.sel
}

func (t TxnRef) Field(f txn.Field) *FieldRef {
	return &FieldRef{sel: t.sel, field: f}
}

func (t TxnRef) Sender() *FieldRef           { return t.Field(txn.Sender) }
func (t TxnRef) Fee() *FieldRef              { return t.Field(txn.Fee) }
func (t TxnRef) FirstValid() *FieldRef       { return t.Field(txn.FirstValid) }
func (t TxnRef) LastValid() *FieldRef        { return t.Field(txn.LastValid) }
func (t TxnRef) Lease() *FieldRef            { return t.Field(txn.Lease) }
func (t TxnRef) Receiver() *FieldRef         { return t.Field(txn.Receiver) }
func (t TxnRef) Amount() *FieldRef           { return t.Field(txn.Amount) }
func (t TxnRef) CloseRemainderTo() *FieldRef { return t.Field(txn.CloseRemainderTo) }
func (t TxnRef) TypeEnum() *FieldRef         { return t.Field(txn.TypeEnum) }
func (t TxnRef) XferAsset() *FieldRef        { return t.Field(txn.XferAsset) }
func (t TxnRef) AssetAmount() *FieldRef      { return t.Field(txn.AssetAmount) }
func (t TxnRef) AssetSender() *FieldRef      { return t.Field(txn.AssetSender) }
func (t TxnRef) AssetReceiver() *FieldRef    { return t.Field(txn.AssetReceiver) }
func (t TxnRef) AssetCloseTo() *FieldRef     { return t.Field(txn.AssetCloseTo) }
func (t TxnRef) GroupIndex() *FieldRef       { return t.Field(txn.GroupIndex) }
func (t TxnRef) ApplicationID() *FieldRef    { return t.Field(txn.ApplicationID) }
func (t TxnRef) OnCompletion() *FieldRef     { return t.Field(txn.OnCompletion) }
func (t TxnRef) NumAppArgs() *FieldRef       { return t.Field(txn.NumAppArgs) }
func (t TxnRef) RekeyTo() *FieldRef          { return t.Field(txn.RekeyTo) }

// ApplicationArg refers to the application call argument i
func (t TxnRef) ApplicationArg(i int) *FieldRef {
	return &FieldRef{sel: t.sel, field: txn.ApplicationArgs, arg: i}
}
