package emit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/global"
	"github.com/lunfardo314/lsig/lsig/params"
	"github.com/lunfardo314/lsig/lsig/pred"
	"github.com/lunfardo314/lsig/lsig/templates"
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

var payee = testAddress(0xdd)

func depositProgram(t *testing.T) *pred.Program {
	p, _, err := templates.Compose(templates.DepositLsig(), nil)
	require.NoError(t, err)
	return p
}

func dynamicFeeProgram(t *testing.T, overrides ...params.Source) *pred.Program {
	overrides = append([]params.Source{params.Map{templates.ParamReceiver: payee.String()}}, overrides...)
	p, _, err := templates.Compose(templates.DynamicFee(), nil, overrides...)
	require.NoError(t, err)
	return p
}

func TestTarget(t *testing.T) {
	require.NoError(t, DefaultTarget().Check())
	require.EqualValues(t, "v4/signature", DefaultTarget().String())
	require.Error(t, Target{Version: 1, Mode: ModeSignature}.Check())
	require.Error(t, Target{Version: 11, Mode: ModeSignature}.Check())
	require.Error(t, Target{Version: 4, Mode: "application"}.Check())

	_, err := Emit(context.Background(), NewTEAL(), depositProgram(t), Target{Version: 1, Mode: ModeSignature})
	e, ok := IsEmitterError(err)
	require.True(t, ok)
	require.EqualValues(t, BackendTEAL, e.Backend)
}

const expectedSmallTEAL = `#pragma version 4
global GroupSize
int 1
==
bnz case_1
err
case_1:
global GroupSize
int 1
==
txn Amount
int 5
==
&&
return
`

func TestTEAL(t *testing.T) {
	t.Run("small", func(t *testing.T) {
		p, err := pred.NewProgram("small", pred.Case(1, func(_ pred.ProvenGroup) pred.Predicate {
			return pred.Equals(pred.Txn.Amount(), pred.Int(5))
		}))
		require.NoError(t, err)
		src, err := TEALSource(p, 4)
		require.NoError(t, err)
		require.EqualValues(t, expectedSmallTEAL, src)
	})
	t.Run("deposit", func(t *testing.T) {
		a, err := Emit(context.Background(), NewTEAL(WithLogger(global.NewLogger(1))), depositProgram(t), DefaultTarget())
		require.NoError(t, err)
		t.Logf("\n%s\n%s", a.Lines().String(), a.Source)
		require.True(t, strings.HasPrefix(a.Source, "#pragma version 4\n"))
		for _, s := range []string{
			"bnz case_1", "bnz case_2", "\nerr\n", "case_1:", "case_2:",
			"gtxna 0 ApplicationArgs 0", `byte "deposit_vote_token"`,
			"txn GroupIndex", "global ZeroAddress", "gtxn 1 XferAsset", "int axfer", "int appl", "int 99", "int 98",
		} {
			require.Contains(t, a.Source, s)
		}
		require.EqualValues(t, 2, strings.Count(a.Source, "\nreturn\n"))
		require.Empty(t, a.Bytecode)
	})
	t.Run("dynamic fee", func(t *testing.T) {
		a, err := Emit(context.Background(), NewTEAL(), dynamicFeeProgram(t), Target{Version: 6, Mode: ModeSignature})
		require.NoError(t, err)
		t.Logf("\n%s", a.Source)
		require.True(t, strings.HasPrefix(a.Source, "#pragma version 6\n"))
		require.Contains(t, a.Source, "addr WWYNX3TKQYVEREVSW6QQP3SXSFOCE3SKUSEIVJ7YAGUPEACNI5UGI4DZCE")
		require.Contains(t, a.Source, "addr "+payee.String())
		require.Contains(t, a.Source, "int 700000")
		require.Contains(t, a.Source, "<=")
		require.NotContains(t, a.Source, "Lease")

		a, err = Emit(context.Background(), NewTEAL(), dynamicFeeProgram(t, params.Map{
			templates.ParamCheckLease: 1,
			templates.ParamLease:      "AQIDBAUGBwgJCgsMDQ4PEBESExQVFhcYGRobHB0eHyA=",
		}), DefaultTarget())
		require.NoError(t, err)
		require.Contains(t, a.Source, "gtxn 1 Lease\nbyte base64 AQIDBAUGBwgJCgsMDQ4PEBESExQVFhcYGRobHB0eHyA=\n==")
	})
	t.Run("source too big", func(t *testing.T) {
		_, err := Emit(context.Background(), NewTEAL(WithMaxSourceSize(100)), depositProgram(t), DefaultTarget())
		e, ok := IsEmitterError(err)
		require.True(t, ok)
		t.Logf("expected error: %v", e)
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Emit(ctx, NewTEAL(), depositProgram(t), DefaultTarget())
		require.True(t, errors.Is(err, context.Canceled))
	})
}

// emitting the same program twice, or programs composed twice from the same parameters, gives identical artifacts
func TestIdempotence(t *testing.T) {
	for _, e := range []Emitter{NewTEAL(), NewEasyFL()} {
		a1, err := Emit(context.Background(), e, depositProgram(t), DefaultTarget())
		require.NoError(t, err)
		a2, err := Emit(context.Background(), e, depositProgram(t), DefaultTarget())
		require.NoError(t, err)
		require.EqualValues(t, a1, a2)

		a3, err := Emit(context.Background(), e, dynamicFeeProgram(t), DefaultTarget())
		require.NoError(t, err)
		a4, err := Emit(context.Background(), e, dynamicFeeProgram(t), DefaultTarget())
		require.NoError(t, err)
		require.EqualValues(t, a3, a4)
		require.NotEqualValues(t, a1.Digest, a3.Digest)

		a5, err := Emit(context.Background(), e, depositProgram(t), Target{Version: 5, Mode: ModeSignature})
		require.NoError(t, err)
		require.NotEqualValues(t, a1.Digest, a5.Digest)
	}
}

type failingEmitter struct{}

func (failingEmitter) Name() string { return "failing" }

func (failingEmitter) Emit(_ context.Context, _ *pred.Program, _ Target) (*Artifact, error) {
	return nil, errors.New("compiler is not available")
}

func TestEmitWrapsErrors(t *testing.T) {
	_, err := Emit(context.Background(), failingEmitter{}, depositProgram(t), DefaultTarget())
	e, ok := IsEmitterError(err)
	require.True(t, ok)
	require.EqualValues(t, "failing", e.Backend)
	require.EqualValues(t, "compiler is not available", errors.Unwrap(err).Error())
}

func TestEasyFL(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		p, err := pred.NewProgram("small",
			pred.Case(1, func(_ pred.ProvenGroup) pred.Predicate {
				return pred.Equals(pred.Txn.Amount(), pred.Int(5))
			}),
			pred.Case(2, func(g pred.ProvenGroup) pred.Predicate {
				return pred.Or(
					pred.IsZeroAddress(g.Txn(1).RekeyTo()),
					pred.Equals(pred.Txn.ApplicationArg(0), pred.Text("a")),
				)
			}),
		)
		require.NoError(t, err)
		src, err := EasyFLSource(p)
		require.NoError(t, err)
		t.Logf("\n%s", src)
		require.EqualValues(t,
			"if(equal(groupSize,u64/1),and(equal(groupSize,u64/1),equal(txnField(6),u64/5)),"+
				"if(equal(groupSize,u64/2),and(equal(groupSize,u64/2),or(equal(gtxnField(1,18),zeroAddress),equal(txnArg(19,0),0x61))),not(1)))",
			src)
	})
	t.Run("many arguments", func(t *testing.T) {
		p, err := pred.NewProgram("many", pred.Case(1, func(_ pred.ProvenGroup) pred.Predicate {
			set := make([]pred.Operand, 40)
			for i := range set {
				set[i] = pred.Int(uint64(i))
			}
			return pred.In(pred.Txn.Amount(), set...)
		}))
		require.NoError(t, err)
		src, err := EasyFLSource(p)
		require.NoError(t, err)
		require.Contains(t, src, "or(or(")

		a, err := Emit(context.Background(), NewEasyFL(), p, DefaultTarget())
		require.NoError(t, err)
		for _, amount := range []uint64{0, 14, 15, 39, 40} {
			tx := types.Transaction{Type: types.PaymentTx}
			tx.Amount = types.MicroAlgos(amount)
			ok, err := EvalEasyFL(a, txn.Group{tx}, 0)
			require.NoError(t, err)
			require.EqualValues(t, amount < 40, ok)
		}
	})
	t.Run("program too big", func(t *testing.T) {
		_, err := Emit(context.Background(), NewEasyFL(WithMaxProgramSize(10)), depositProgram(t), DefaultTarget())
		e, ok := IsEmitterError(err)
		require.True(t, ok)
		t.Logf("expected error: %v", e)
	})
}

// the compiled EasyFL program accepts exactly the groups the direct evaluation accepts
func TestEasyFLAgreesWithEvaluator(t *testing.T) {
	lsig, dao, other := testAddress(0xaa), testAddress(0xbb), testAddress(0xcc)

	optIn := types.Transaction{Type: types.AssetTransferTx}
	optIn.Sender, optIn.AssetReceiver, optIn.XferAsset = lsig, lsig, 99

	call := types.Transaction{Type: types.ApplicationCallTx}
	call.Sender, call.ApplicationID = dao, 98
	call.ApplicationArgs = [][]byte{[]byte("deposit_vote_token")}

	xfer := types.Transaction{Type: types.AssetTransferTx}
	xfer.Sender, xfer.AssetReceiver, xfer.XferAsset, xfer.AssetAmount = lsig, dao, 99, 10

	mutate := func(tx types.Transaction, f func(tx *types.Transaction)) types.Transaction {
		f(&tx)
		return tx
	}
	depositGroups := []struct {
		group txn.Group
		self  int
	}{
		{txn.Group{optIn}, 0},
		{txn.Group{mutate(optIn, func(tx *types.Transaction) { tx.AssetAmount = 1 })}, 0},
		{txn.Group{mutate(optIn, func(tx *types.Transaction) { tx.RekeyTo = other })}, 0},
		{txn.Group{call, xfer}, 1},
		{txn.Group{call, xfer}, 0},
		{txn.Group{call, mutate(xfer, func(tx *types.Transaction) { tx.XferAsset = 100 })}, 1},
		{txn.Group{mutate(call, func(tx *types.Transaction) { tx.ApplicationArgs = nil }), xfer}, 1},
		{txn.Group{mutate(call, func(tx *types.Transaction) { tx.ApplicationArgs = [][]byte{[]byte("vote")} }), xfer}, 1},
		{txn.Group{call, xfer, xfer}, 1},
		{txn.Group{xfer, call}, 0},
	}
	p := depositProgram(t)
	a, err := Emit(context.Background(), NewEasyFL(), p, DefaultTarget())
	require.NoError(t, err)
	t.Logf("deposit-lsig EasyFL bytecode: %d bytes", len(a.Bytecode))
	for i, c := range depositGroups {
		ok, err := EvalEasyFL(a, c.group, c.self)
		require.EqualValues(t, p.Evaluate(c.group, c.self), ok && err == nil, "case #%d", i)
	}
	ok, _ := EvalEasyFL(a, depositGroups[3].group, 1)
	require.True(t, ok)

	pf := dynamicFeeProgram(t)
	af, err := Emit(context.Background(), NewEasyFL(), pf, DefaultTarget())
	require.NoError(t, err)
	cls, err := types.DecodeAddress("WWYNX3TKQYVEREVSW6QQP3SXSFOCE3SKUSEIVJ7YAGUPEACNI5UGI4DZCE")
	require.NoError(t, err)

	feePay := types.Transaction{Type: types.PaymentTx}
	feePay.Sender, feePay.Receiver, feePay.Amount = other, lsig, 1000
	pay := types.Transaction{Type: types.PaymentTx}
	pay.Sender, pay.Receiver, pay.CloseRemainderTo, pay.Amount, pay.Fee = lsig, payee, cls, 700000, 1000

	for i, g := range []txn.Group{
		{feePay, pay},
		{feePay, mutate(pay, func(tx *types.Transaction) { tx.Amount = 700001 })},
		{feePay, mutate(pay, func(tx *types.Transaction) { tx.Fee = 1001 })},
		{mutate(feePay, func(tx *types.Transaction) { tx.Amount = 1001 }), mutate(pay, func(tx *types.Transaction) { tx.Fee = 1001 })},
		{feePay, mutate(pay, func(tx *types.Transaction) { tx.RekeyTo = other })},
		{feePay, mutate(pay, func(tx *types.Transaction) { tx.CloseRemainderTo = other })},
		{pay},
	} {
		self := len(g) - 1
		ok, err := EvalEasyFL(af, g, self)
		require.EqualValues(t, pf.Evaluate(g, self), ok && err == nil, "case #%d", i)
	}
	ok, err = EvalEasyFL(af, txn.Group{feePay, pay}, 1)
	require.NoError(t, err)
	require.True(t, ok)
}

type compileServer struct {
	t        *testing.T
	bytecode []byte
	hash     string
	status   int
	source   string
}

func (s *compileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.EqualValues(s.t, "/v2/teal/compile", r.URL.Path)
	require.EqualValues(s.t, "test-token", r.Header.Get("X-Algo-API-Token"))
	body, err := io.ReadAll(r.Body)
	require.NoError(s.t, err)
	s.source = string(body)

	w.Header().Set("Content-Type", "application/json")
	if s.status != 0 && s.status != http.StatusOK {
		w.WriteHeader(s.status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "1: unknown opcode"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"hash":   s.hash,
		"result": base64.StdEncoding.EncodeToString(s.bytecode),
	})
}

func TestAlgod(t *testing.T) {
	bytecode := []byte{0x04, 0x20, 0x01, 0x01, 0x22}
	hash := crypto.AddressFromProgram(bytecode).String()

	t.Run("ok", func(t *testing.T) {
		srv := &compileServer{t: t, bytecode: bytecode, hash: hash}
		ts := httptest.NewServer(srv)
		defer ts.Close()

		e, err := NewAlgod(ts.URL, "test-token", WithLogger(global.NewLogger(0)))
		require.NoError(t, err)
		p := depositProgram(t)
		a, err := Emit(context.Background(), e, p, DefaultTarget())
		require.NoError(t, err)
		require.EqualValues(t, bytecode, a.Bytecode)
		require.EqualValues(t, hash, a.Address)
		expected, err := TEALSource(p, DefaultVersion)
		require.NoError(t, err)
		require.EqualValues(t, expected, srv.source)
		require.EqualValues(t, expected, a.Source)
	})
	t.Run("compiler error", func(t *testing.T) {
		ts := httptest.NewServer(&compileServer{t: t, status: http.StatusBadRequest})
		defer ts.Close()

		e, err := NewAlgod(ts.URL, "test-token")
		require.NoError(t, err)
		_, err = Emit(context.Background(), e, depositProgram(t), DefaultTarget())
		ee, ok := IsEmitterError(err)
		require.True(t, ok)
		require.EqualValues(t, BackendAlgod, ee.Backend)
		t.Logf("expected error: %v", err)
	})
	t.Run("wrong hash", func(t *testing.T) {
		ts := httptest.NewServer(&compileServer{t: t, bytecode: bytecode, hash: testAddress(1).String()})
		defer ts.Close()

		e, err := NewAlgod(ts.URL, "test-token")
		require.NoError(t, err)
		_, err = Emit(context.Background(), e, depositProgram(t), DefaultTarget())
		_, ok := IsEmitterError(err)
		require.True(t, ok)
	})
	t.Run("program too big", func(t *testing.T) {
		big := make([]byte, MaxProgramSize+1)
		ts := httptest.NewServer(&compileServer{t: t, bytecode: big, hash: crypto.AddressFromProgram(big).String()})
		defer ts.Close()

		e, err := NewAlgod(ts.URL, "test-token")
		require.NoError(t, err)
		_, err = Emit(context.Background(), e, depositProgram(t), DefaultTarget())
		ee, ok := IsEmitterError(err)
		require.True(t, ok)
		require.Contains(t, ee.Error(), "exceeds maximum")
	})
}
