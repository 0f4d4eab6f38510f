package txn

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"gopkg.in/yaml.v2"
)

// YAML description of a transaction group. Used to evaluate programs offline against hand-written
// groups. Byte strings are UTF-8 text unless prefixed with '0x' (hex) or 'b64:' (base64)

type (
	GroupYAML struct {
		Self int       `yaml:"self"`
		Txns []TxnYAML `yaml:"txns"`
	}

	TxnYAML struct {
		Type             string   `yaml:"type"`
		Sender           string   `yaml:"sender"`
		Fee              uint64   `yaml:"fee"`
		FirstValid       uint64   `yaml:"first_valid"`
		LastValid        uint64   `yaml:"last_valid"`
		Lease            string   `yaml:"lease"`
		RekeyTo          string   `yaml:"rekey_to"`
		Receiver         string   `yaml:"receiver"`
		Amount           uint64   `yaml:"amount"`
		CloseRemainderTo string   `yaml:"close_remainder_to"`
		XferAsset        uint64   `yaml:"xfer_asset"`
		AssetAmount      uint64   `yaml:"asset_amount"`
		AssetSender      string   `yaml:"asset_sender"`
		AssetReceiver    string   `yaml:"asset_receiver"`
		AssetCloseTo     string   `yaml:"asset_close_to"`
		ApplicationID    uint64   `yaml:"app_id"`
		OnCompletion     uint64   `yaml:"on_completion"`
		ApplicationArgs  []string `yaml:"app_args"`
	}
)

// GroupFromYAML parses group description. Returns the group and the index of the authorized transaction
func GroupFromYAML(data []byte) (Group, int, error) {
	var gy GroupYAML
	if err := yaml.UnmarshalStrict(data, &gy); err != nil {
		return nil, 0, fmt.Errorf("GroupFromYAML: %w", err)
	}
	ret := make(Group, len(gy.Txns))
	for i := range gy.Txns {
		tx, err := gy.Txns[i].Transaction()
		if err != nil {
			return nil, 0, fmt.Errorf("GroupFromYAML: txn #%d: %w", i, err)
		}
		ret[i] = *tx
	}
	if err := ret.CheckAuthorizing(gy.Self); err != nil {
		return nil, 0, fmt.Errorf("GroupFromYAML: %w", err)
	}
	return ret, gy.Self, nil
}

func (ty *TxnYAML) Transaction() (*types.Transaction, error) {
	ret := &types.Transaction{Type: types.TxType(ty.Type)}
	if TypeEnumOf(ret.Type) == TypeEnumUnknown {
		return nil, fmt.Errorf("unknown transaction type '%s'", ty.Type)
	}
	addrFields := []struct {
		src string
		dst *types.Address
	}{
		{ty.Sender, &ret.Sender},
		{ty.RekeyTo, &ret.RekeyTo},
		{ty.Receiver, &ret.Receiver},
		{ty.CloseRemainderTo, &ret.CloseRemainderTo},
		{ty.AssetSender, &ret.AssetSender},
		{ty.AssetReceiver, &ret.AssetReceiver},
		{ty.AssetCloseTo, &ret.AssetCloseTo},
	}
	var err error
	for _, af := range addrFields {
		if af.src == "" {
			continue
		}
		if *af.dst, err = types.DecodeAddress(af.src); err != nil {
			return nil, fmt.Errorf("wrong address '%s': %w", af.src, err)
		}
	}
	if ty.Lease != "" {
		lease, err := DecodeBytesLiteral(ty.Lease)
		if err != nil {
			return nil, err
		}
		if len(lease) != len(ret.Lease) {
			return nil, fmt.Errorf("lease must be %d bytes long, got %d", len(ret.Lease), len(lease))
		}
		copy(ret.Lease[:], lease)
	}
	ret.Fee = types.MicroAlgos(ty.Fee)
	ret.FirstValid = types.Round(ty.FirstValid)
	ret.LastValid = types.Round(ty.LastValid)
	ret.Amount = types.MicroAlgos(ty.Amount)
	ret.XferAsset = types.AssetIndex(ty.XferAsset)
	ret.AssetAmount = ty.AssetAmount
	ret.ApplicationID = types.AppIndex(ty.ApplicationID)
	ret.OnCompletion = types.OnCompletion(ty.OnCompletion)
	for _, a := range ty.ApplicationArgs {
		arg, err := DecodeBytesLiteral(a)
		if err != nil {
			return nil, err
		}
		ret.ApplicationArgs = append(ret.ApplicationArgs, arg)
	}
	return ret, nil
}

// DecodeBytesLiteral decodes '0x<hex>', 'b64:<base64>' or plain text
func DecodeBytesLiteral(s string) ([]byte, error) {
	switch {
	case strings.HasPrefix(s, "0x"):
		ret, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("wrong hex literal '%s': %w", s, err)
		}
		return ret, nil
	case strings.HasPrefix(s, "b64:"):
		ret, err := base64.StdEncoding.DecodeString(s[4:])
		if err != nil {
			return nil, fmt.Errorf("wrong base64 literal '%s': %w", s, err)
		}
		return ret, nil
	}
	return []byte(s), nil
}
