package pred

import (
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/lsig/txn"
	"github.com/stretchr/testify/require"
)

func testAddress(b byte) types.Address {
	var ret types.Address
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func payment(from, to types.Address, amount uint64) types.Transaction {
	tx := types.Transaction{Type: types.PaymentTx}
	tx.Sender = from
	tx.Receiver = to
	tx.Amount = types.MicroAlgos(amount)
	tx.Fee = 1000
	return tx
}

// pays exactly 'amount' from gtxn[0] to gtxn[1]'s sender
func twoPaymentsProgram(t *testing.T, amount uint64) *Program {
	p, err := NewProgram("two-payments",
		Case(2, func(g ProvenGroup) Predicate {
			return And(
				IsType(g.Txn(0), types.PaymentTx),
				Equals(g.Txn(0).Receiver(), g.Txn(1).Sender()),
				Equals(g.Txn(0).Amount(), Int(amount)),
				NoRedirect(Txn),
			)
		}),
	)
	require.NoError(t, err)
	return p
}

func TestComposition(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		p := twoPaymentsProgram(t, 100)
		require.EqualValues(t, []int{2}, p.Sizes())
		t.Logf("\n%s", p.String())

		body, ok := p.Branches()[0].Body().(*Conjunction)
		require.True(t, ok)
		first, ok := body.Children()[0].(*GroupSizeEquals)
		require.True(t, ok)
		require.EqualValues(t, 2, first.N())
	})
	t.Run("no cases", func(t *testing.T) {
		_, err := NewProgram("empty")
		_, ok := IsCompositionError(err)
		require.True(t, ok)
	})
	t.Run("index not guarded", func(t *testing.T) {
		_, err := NewProgram("bad-index",
			Case(1, func(g ProvenGroup) Predicate {
				return Equals(g.Txn(1).Amount(), Int(0))
			}),
		)
		e, ok := IsCompositionError(err)
		require.True(t, ok)
		require.Contains(t, e.Reason, "not guaranteed")
		t.Logf("expected error: %v", err)
	})
	t.Run("group leaked into another case", func(t *testing.T) {
		var leaked ProvenGroup
		_, err := NewProgram("leaked",
			Case(3, func(g ProvenGroup) Predicate {
				leaked = g
				return True
			}),
			Case(1, func(_ ProvenGroup) Predicate {
				return Equals(leaked.Txn(2).Fee(), Int(0))
			}),
		)
		_, ok := IsCompositionError(err)
		require.True(t, ok)
	})
	t.Run("duplicate sizes", func(t *testing.T) {
		_, err := NewProgram("dup",
			Case(1, func(_ ProvenGroup) Predicate { return True }),
			Case(1, func(_ ProvenGroup) Predicate { return False }),
		)
		_, ok := IsCompositionError(err)
		require.True(t, ok)
	})
	t.Run("size out of range", func(t *testing.T) {
		_, err := NewProgram("size0", Case(0, func(_ ProvenGroup) Predicate { return True }))
		require.Error(t, err)
		_, err = NewProgram("size17", Case(17, func(_ ProvenGroup) Predicate { return True }))
		require.Error(t, err)
	})
	t.Run("nil body", func(t *testing.T) {
		_, err := NewProgram("nil", Case(1, nil))
		require.Error(t, err)
		_, err = NewProgram("nil", Case(1, func(_ ProvenGroup) Predicate { return nil }))
		require.Error(t, err)
	})
	t.Run("kind mismatch", func(t *testing.T) {
		_, err := NewProgram("kinds", Case(1, func(_ ProvenGroup) Predicate {
			return Equals(Txn.Receiver(), Int(1))
		}))
		_, ok := IsCompositionError(err)
		require.True(t, ok)

		_, err = NewProgram("kinds", Case(1, func(_ ProvenGroup) Predicate {
			return LessEquals(Txn.Receiver(), Txn.Sender())
		}))
		_, ok = IsCompositionError(err)
		require.True(t, ok)
	})
	t.Run("negative arg index", func(t *testing.T) {
		_, err := NewProgram("args", Case(1, func(_ ProvenGroup) Predicate {
			return Equals(Txn.ApplicationArg(-1), Text("x"))
		}))
		require.Error(t, err)
	})
}

func TestEvaluation(t *testing.T) {
	a, b := testAddress(1), testAddress(2)
	p := twoPaymentsProgram(t, 100)

	t.Run("approve", func(t *testing.T) {
		g := txn.Group{payment(a, b, 100), payment(b, a, 5)}
		ok, err := p.Run(g, 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, p.Evaluate(g, 0))
	})
	t.Run("reject on amount", func(t *testing.T) {
		g := txn.Group{payment(a, b, 101), payment(b, a, 5)}
		require.False(t, p.Evaluate(g, 1))
	})
	t.Run("reject on receiver", func(t *testing.T) {
		g := txn.Group{payment(a, a, 100), payment(b, a, 5)}
		require.False(t, p.Evaluate(g, 1))
	})
	t.Run("reject on rekey", func(t *testing.T) {
		g := txn.Group{payment(a, b, 100), payment(b, a, 5)}
		g[1].RekeyTo = a
		require.False(t, p.Evaluate(g, 1))
		// rekey of the other transaction is not checked by this program
		require.True(t, p.Evaluate(g, 0))
	})
	t.Run("fail closed on other sizes", func(t *testing.T) {
		for n := 1; n <= txn.MaxGroupSize; n++ {
			if n == 2 {
				continue
			}
			g := make(txn.Group, n)
			for i := range g {
				g[i] = payment(a, b, 100)
			}
			ok, err := p.Run(g, 0)
			require.NoError(t, err)
			require.False(t, ok)
		}
	})
	t.Run("wrong authorizing index", func(t *testing.T) {
		g := txn.Group{payment(a, b, 100), payment(b, a, 5)}
		_, err := p.Run(g, 2)
		require.Error(t, err)
		require.False(t, p.Evaluate(g, 2))
	})
	t.Run("argument out of range rejects", func(t *testing.T) {
		p1, err := NewProgram("args", Case(1, func(_ ProvenGroup) Predicate {
			return Or(
				True,
				Equals(Txn.ApplicationArg(0), Text("x")),
			)
		}))
		require.NoError(t, err)
		g := txn.Group{{Type: types.ApplicationCallTx}}
		_, err = p1.Run(g, 0)
		require.Error(t, err)
		require.False(t, p1.Evaluate(g, 0))
	})
}

func TestCondOrder(t *testing.T) {
	p, err := NewProgram("cond",
		Case(1, func(_ ProvenGroup) Predicate { return True }),
		Case(2, func(_ ProvenGroup) Predicate { return False }),
		Case(3, func(g ProvenGroup) Predicate {
			return LessEquals(g.Txn(2).Fee(), Int(1000))
		}),
	)
	require.NoError(t, err)
	require.EqualValues(t, []int{1, 2, 3}, p.Sizes())

	tx := payment(testAddress(1), testAddress(2), 1)
	require.True(t, p.Evaluate(txn.Group{tx}, 0))
	require.False(t, p.Evaluate(txn.Group{tx, tx}, 0))
	require.True(t, p.Evaluate(txn.Group{tx, tx, tx}, 0))
	tx1 := tx
	tx1.Fee = 1001
	require.False(t, p.Evaluate(txn.Group{tx, tx, tx1}, 0))
	require.False(t, p.Evaluate(txn.Group{tx, tx, tx, tx}, 0))
}

func TestPrimitives(t *testing.T) {
	tx := types.Transaction{Type: types.ApplicationCallTx}
	tx.ApplicationID = 98
	tx.ApplicationArgs = [][]byte{[]byte("deposit_vote_token")}
	g := txn.Group{tx}

	eval := func(p Predicate) bool {
		ret, err := p.eval(&evalContext{group: g, self: 0})
		require.NoError(t, err)
		return ret
	}
	require.True(t, eval(In(Txn.ApplicationArg(0), Text("add_proposal"), Text("deposit_vote_token"))))
	require.False(t, eval(In(Txn.ApplicationArg(0), Text("add_proposal"))))
	require.False(t, eval(In(Txn.ApplicationArg(0))))
	require.True(t, eval(NoRedirect(Txn)))
	require.True(t, eval(IsZeroAddress(Txn.RekeyTo())))
	require.True(t, eval(IsType(Txn, types.ApplicationCallTx)))
	require.False(t, eval(IsType(Txn, types.PaymentTx)))
	require.True(t, eval(LessEquals(Txn.ApplicationID(), Int(98))))
	require.False(t, eval(LessEquals(Txn.ApplicationID(), Int(97))))
	require.True(t, eval(LessEquals(Int(0), Int(^uint64(0)))))
	require.True(t, eval(And()))
	require.False(t, eval(Or()))
	require.True(t, eval(Equals(GlobalGroupSize(), Int(1))))
	require.True(t, eval(SizeEquals(1)))

	t.Run("strings", func(t *testing.T) {
		require.EqualValues(t, `txn.ApplicationArgs[0] == "x"`, Equals(Txn.ApplicationArg(0), Text("x")).String())
		require.EqualValues(t, "gtxn[1].TypeEnum == axfer", IsType(ProvenGroup{size: 2}.Txn(1), types.AssetTransferTx).String())
		require.EqualValues(t, "txn.RekeyTo == global.ZeroAddress", IsZeroAddress(Txn.RekeyTo()).String())
		require.EqualValues(t, "0x00ff", Text("\x00\xff").String())
		require.EqualValues(t, testAddress(3).String(), Addr(testAddress(3)).String())
	})
}
