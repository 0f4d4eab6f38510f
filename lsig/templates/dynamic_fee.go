package templates

import (
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/lsig/params"
	"github.com/lunfardo314/lsig/lsig/pred"
)

const (
	ParamAmount      = "ARG_AMT"
	ParamCloseTo     = "ARG_CLS"
	ParamFirstValid  = "ARG_FV"
	ParamLastValid   = "ARG_LV"
	ParamLease       = "ARG_LEASE"
	ParamReceiver    = "TMPL_TO"
	ParamMaxFee      = "ARG_MAX_FEE"
	ParamCheckRounds = "ARG_CHECK_ROUNDS"
	ParamCheckLease  = "ARG_CHECK_LEASE"

	leaseSize = 32
)

type dynamicFee struct{}

// DynamicFee lets anyone pay the fee of one pre-agreed payment from the account. The group is
// the fee payment into the account followed by the payment itself
func DynamicFee() Template {
	return dynamicFee{}
}

func (dynamicFee) Name() string {
	return "dynamic-fee"
}

func (dynamicFee) Description() string {
	return "one pre-agreed payment whose fee is covered by another account"
}

func (dynamicFee) Schema() params.Schema {
	return params.Schema{
		{Name: ParamAmount, Kind: params.KindUint, Default: 700000, Description: "amount to pay to TMPL_TO in microAlgos"},
		{Name: ParamCloseTo, Kind: params.KindAddress, Default: "WWYNX3TKQYVEREVSW6QQP3SXSFOCE3SKUSEIVJ7YAGUPEACNI5UGI4DZCE", Description: "account to close the remainder to"},
		{Name: ParamFirstValid, Kind: params.KindUint, Default: 10, Description: "required first valid round of the payment"},
		{Name: ParamLastValid, Kind: params.KindUint, Default: 1000000, Description: "required last valid round of the payment"},
		{Name: ParamLease, Kind: params.KindBytes, Encoding: params.EncodingBase64, Default: "023sdDE2", Description: "required lease of the payment"},
		{Name: ParamReceiver, Kind: params.KindAddress, Required: true, Description: "receiver of the payment"},
		{Name: ParamMaxFee, Kind: params.KindUint, Default: 10000, Description: "maximum fee of the authorized transaction"},
		{Name: ParamCheckRounds, Kind: params.KindUint, Default: 0, Description: "1 to require the validity window ARG_FV..ARG_LV"},
		{Name: ParamCheckLease, Kind: params.KindUint, Default: 0, Description: "1 to require the lease ARG_LEASE"},
	}
}

func (d dynamicFee) Build(par *params.Set) (*pred.Program, error) {
	amount := par.Uint(ParamAmount)
	closeTo := par.Address(ParamCloseTo)
	receiver := par.Address(ParamReceiver)
	maxFee := par.Uint(ParamMaxFee)
	firstValid := par.Uint(ParamFirstValid)
	lastValid := par.Uint(ParamLastValid)
	lease := par.Bytes(ParamLease)

	// Replay protection is off unless the deployer enables it. Without it the same payment can be
	// authorized again within the validity window while the account has funds.
	checkRounds := par.Flag(ParamCheckRounds)
	checkLease := par.Flag(ParamCheckLease)
	if checkLease && len(lease) != leaseSize {
		return nil, &params.ParameterError{
			Param:  ParamLease,
			Reason: "lease must be 32 bytes long when the lease check is enabled",
		}
	}

	return pred.NewProgram(d.Name(),
		pred.Case(2, func(g pred.ProvenGroup) pred.Predicate {
			feePayment, payment := g.Txn(0), g.Txn(1)
			checks := []pred.Predicate{
				pred.IsType(feePayment, types.PaymentTx),
				pred.Equals(feePayment.Receiver(), payment.Sender()),
				pred.Equals(feePayment.Amount(), payment.Fee()),
				pred.IsType(payment, types.PaymentTx),

				pred.IsZeroAddress(pred.Txn.RekeyTo()),
				pred.LessEquals(pred.Txn.Fee(), pred.Int(maxFee)),
				pred.Equals(payment.Receiver(), pred.Addr(receiver)),
				pred.Equals(payment.CloseRemainderTo(), pred.Addr(closeTo)),
				pred.Equals(payment.Amount(), pred.Int(amount)),
			}
			if checkRounds {
				checks = append(checks,
					pred.Equals(payment.FirstValid(), pred.Int(firstValid)),
					pred.Equals(payment.LastValid(), pred.Int(lastValid)),
				)
			}
			if checkLease {
				checks = append(checks, pred.Equals(payment.Lease(), pred.Base64(lease)))
			}
			return pred.And(checks...)
		}),
	)
}
