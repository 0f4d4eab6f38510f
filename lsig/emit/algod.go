package emit

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/lunfardo314/lsig/lsig/pred"
)

// AlgodEmitter renders TEAL and has it compiled by an algod node. The node is the external compiler:
// its structural errors, such as program size or unsupported opcodes for the version, are returned verbatim
type AlgodEmitter struct {
	*ConfigOptions
	client   *algod.Client
	endpoint string
}

const BackendAlgod = "algod"

func NewAlgod(endpoint, token string, opts ...ConfigOption) (*AlgodEmitter, error) {
	client, err := algod.MakeClient(endpoint, token)
	if err != nil {
		return nil, newEmitterError(BackendAlgod, err)
	}
	return &AlgodEmitter{
		ConfigOptions: configOptions(opts...),
		client:        client,
		endpoint:      endpoint,
	}, nil
}

func (e *AlgodEmitter) Name() string {
	return BackendAlgod
}

func (e *AlgodEmitter) Emit(ctx context.Context, p *pred.Program, target Target) (*Artifact, error) {
	src, err := TEALSource(p, target.Version)
	if err != nil {
		return nil, newEmitterError(BackendAlgod, err)
	}
	if len(src) > e.maxSourceSize {
		return nil, newEmitterError(BackendAlgod, fmt.Errorf("source size %d exceeds maximum %d", len(src), e.maxSourceSize))
	}
	e.log.Debugf("compiling '%s' at %s", p.Name(), e.endpoint)

	resp, err := e.client.TealCompile([]byte(src)).Do(ctx)
	if err != nil {
		return nil, newEmitterError(BackendAlgod, err)
	}
	bytecode, err := base64.StdEncoding.DecodeString(resp.Result)
	if err != nil {
		return nil, newEmitterError(BackendAlgod, fmt.Errorf("can't decode compiled program: %w", err))
	}
	if len(bytecode) > e.maxProgramSize {
		return nil, newEmitterError(BackendAlgod, fmt.Errorf("program size %d exceeds maximum %d", len(bytecode), e.maxProgramSize))
	}
	addr := crypto.AddressFromProgram(bytecode)
	if resp.Hash != addr.String() {
		return nil, newEmitterError(BackendAlgod, fmt.Errorf("compiler reported address %s, program hashes to %s", resp.Hash, addr))
	}
	ret := newArtifact(p, BackendAlgod, target, src, bytecode)
	ret.Address = resp.Hash
	e.log.Infof("compiled '%s': %d bytes, address %s", p.Name(), len(bytecode), ret.Address)
	return ret, nil
}
