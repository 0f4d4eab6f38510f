package templates

import (
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/lunfardo314/lsig/lsig/params"
	"github.com/lunfardo314/lsig/lsig/pred"
)

const (
	ParamGovToken = "ARG_GOV_TOKEN"
	ParamDaoAppID = "ARG_DAO_APP_ID"
)

// DepositActions are the application calls which may move the governance token in or out of the deposit account
var DepositActions = []string{
	"add_proposal",
	"deposit_vote_token",
	"withdraw_vote_deposit",
	"clear_proposal",
}

type depositLsig struct{}

// DepositLsig is the account holding vote token and proposal deposits of the DAO application.
// It accepts an opt-in to the governance token, or a transfer of the token paired with a call of the DAO application
func DepositLsig() Template {
	return depositLsig{}
}

func (depositLsig) Name() string {
	return "deposit-lsig"
}

func (depositLsig) Description() string {
	return "holds vote token and proposal deposits of the DAO application"
}

func (depositLsig) Schema() params.Schema {
	return params.Schema{
		{Name: ParamGovToken, Kind: params.KindUint, Default: 99, Description: "governance token asset id"},
		{Name: ParamDaoAppID, Kind: params.KindUint, Default: 98, Description: "DAO application id"},
	}
}

func (d depositLsig) Build(par *params.Set) (*pred.Program, error) {
	token := par.Uint(ParamGovToken)
	appID := par.Uint(ParamDaoAppID)

	actions := make([]pred.Operand, len(DepositActions))
	for i, a := range DepositActions {
		actions[i] = pred.Text(a)
	}
	return pred.NewProgram(d.Name(),
		pred.Case(1, func(_ pred.ProvenGroup) pred.Predicate {
			return OptIn(pred.Txn, token)
		}),
		pred.Case(2, func(g pred.ProvenGroup) pred.Predicate {
			call, xfer := g.Txn(0), g.Txn(1)
			return pred.And(
				pred.NoRedirect(call),
				pred.IsType(call, types.ApplicationCallTx),
				pred.Equals(call.ApplicationID(), pred.Int(appID)),
				pred.In(call.ApplicationArg(0), actions...),
				// sender, receiver and amount of the transfer are checked by the application
				pred.Equals(pred.Txn.GroupIndex(), pred.Int(1)),
				pred.NoRedirect(xfer),
				pred.IsType(xfer, types.AssetTransferTx),
				pred.Equals(xfer.XferAsset(), pred.Int(token)),
			)
		}),
	)
}

// OptIn accepts only a zero amount transfer of the asset with no redirection, i.e. opt-in to hold the asset
func OptIn(t pred.TxnRef, asset uint64) pred.Predicate {
	return pred.And(
		pred.NoRedirect(t),
		pred.IsType(t, types.AssetTransferTx),
		pred.Equals(t.AssetAmount(), pred.Int(0)),
		pred.Equals(t.XferAsset(), pred.Int(asset)),
	)
}
