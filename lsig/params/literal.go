package params

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/mitchellh/mapstructure"
)

type (
	Kind byte

	// Encoding of the byte string parameters supplied as text
	Encoding byte

	// Literal is a resolved, typed parameter value
	Literal struct {
		Kind  Kind
		Uint  uint64
		Bytes []byte
	}
)

const (
	KindUint = Kind(iota)
	KindAddress
	KindBytes
)

const (
	EncodingUTF8 = Encoding(iota)
	EncodingBase64
	EncodingBase32
	EncodingHex
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindAddress:
		return "address"
	case KindBytes:
		return "bytes"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf8"
	case EncodingBase64:
		return "base64"
	case EncodingBase32:
		return "base32"
	case EncodingHex:
		return "hex"
	}
	return "encoding(" + strconv.Itoa(int(e)) + ")"
}

func UintLiteral(v uint64) Literal {
	return Literal{Kind: KindUint, Uint: v}
}

func AddressLiteral(addr types.Address) Literal {
	return Literal{Kind: KindAddress, Bytes: bytes.Clone(addr[:])}
}

func BytesLiteral(data []byte) Literal {
	return Literal{Kind: KindBytes, Bytes: bytes.Clone(data)}
}

func (l Literal) Address() (ret types.Address) {
	copy(ret[:], l.Bytes)
	return
}

func (l Literal) String() string {
	switch l.Kind {
	case KindUint:
		return strconv.FormatUint(l.Uint, 10)
	case KindAddress:
		return l.Address().String()
	default:
		return "0x" + hex.EncodeToString(l.Bytes)
	}
}

// decodeLiteral converts raw parameter value of any supported Go type into the literal of the kind
func decodeLiteral(kind Kind, enc Encoding, v any) (Literal, error) {
	switch kind {
	case KindUint:
		u, err := decodeUint(v)
		if err != nil {
			return Literal{}, err
		}
		return UintLiteral(u), nil
	case KindAddress:
		switch v := v.(type) {
		case types.Address:
			return AddressLiteral(v), nil
		case string:
			addr, err := types.DecodeAddress(strings.TrimSpace(v))
			if err != nil {
				return Literal{}, fmt.Errorf("not a valid address '%s': %w", v, err)
			}
			return AddressLiteral(addr), nil
		}
		return Literal{}, fmt.Errorf("address must be a string, got %T", v)
	case KindBytes:
		switch v := v.(type) {
		case []byte:
			return BytesLiteral(v), nil
		case string:
			data, err := decodeBytes(enc, v)
			if err != nil {
				return Literal{}, err
			}
			return BytesLiteral(data), nil
		}
		return Literal{}, fmt.Errorf("byte string must be a string or []byte, got %T", v)
	}
	return Literal{}, fmt.Errorf("unknown parameter kind %s", kind)
}

// decodeUint accepts integers, booleans, integral floats (as produced by JSON decoders) and decimal strings.
// Negative and fractional values are rejected rather than wrapped or truncated
func decodeUint(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, fmt.Errorf("negative value %d", rv.Int())
		}
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
			return 0, fmt.Errorf("value %v is not a uint64", f)
		}
	case reflect.String:
		// decimal only. Weak decoding would read "010" as octal
		s := strings.TrimSpace(rv.String())
		ret, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' is not a uint64: %w", s, err)
		}
		return ret, nil
	case reflect.Invalid:
		return 0, fmt.Errorf("value is missing")
	}
	var ret uint64
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &ret,
	})
	if err != nil {
		return 0, err
	}
	if err = dec.Decode(v); err != nil {
		return 0, err
	}
	return ret, nil
}

func decodeBytes(enc Encoding, s string) ([]byte, error) {
	var ret []byte
	var err error
	switch enc {
	case EncodingUTF8:
		return []byte(s), nil
	case EncodingBase64:
		ret, err = base64.StdEncoding.DecodeString(s)
	case EncodingBase32:
		ret, err = base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(s, "="))
	case EncodingHex:
		ret, err = hex.DecodeString(strings.TrimPrefix(s, "0x"))
	default:
		return nil, fmt.Errorf("unknown encoding %s", enc)
	}
	if err != nil {
		return nil, fmt.Errorf("'%s' is not valid %s: %w", s, enc, err)
	}
	return ret, nil
}
