package emit

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/lunfardo314/lsig/lsig/pred"
	"github.com/lunfardo314/lsig/util"
	"github.com/lunfardo314/lsig/util/lines"
)

type (
	// Mode is the execution mode of the artifact
	Mode string

	// Target is the language version and execution mode the artifact is emitted for
	Target struct {
		Version int
		Mode    Mode
	}

	// Artifact is the emitted program. It is opaque for the rest of the system: nothing
	// except the execution environment interprets Source or Bytecode
	Artifact struct {
		Template string
		Backend  string
		Target   Target
		// Source is the text form handed to the compiler
		Source string
		// Bytecode is empty when the backend produces text only
		Bytecode []byte
		// Address of the logic signature account, when the backend knows it
		Address string
		Digest  [32]byte
	}

	// Emitter turns the composed program into an artifact. Emitters do no semantic validation of the program
	Emitter interface {
		Name() string
		Emit(ctx context.Context, p *pred.Program, target Target) (*Artifact, error)
	}
)

const (
	// ModeSignature means the program is evaluated per transaction group and keeps no state
	ModeSignature = Mode("signature")

	MinVersion     = 2
	MaxVersion     = 10
	DefaultVersion = 4

	// MaxProgramSize is the maximum size of the compiled signature-mode program
	MaxProgramSize = 1000
)

func DefaultTarget() Target {
	return Target{Version: DefaultVersion, Mode: ModeSignature}
}

func (t Target) Check() error {
	if t.Mode != ModeSignature {
		return fmt.Errorf("unsupported execution mode '%s'", t.Mode)
	}
	if t.Version < MinVersion || t.Version > MaxVersion {
		return fmt.Errorf("language version %d is out of supported range [%d,%d]", t.Version, MinVersion, MaxVersion)
	}
	return nil
}

func (t Target) String() string {
	return fmt.Sprintf("v%d/%s", t.Version, t.Mode)
}

func newArtifact(p *pred.Program, backend string, target Target, source string, bytecode []byte) *Artifact {
	ret := &Artifact{
		Template: p.Name(),
		Backend:  backend,
		Target:   target,
		Source:   source,
		Bytecode: bytecode,
	}
	var version [8]byte
	binary.BigEndian.PutUint64(version[:], uint64(target.Version))
	ret.Digest = util.Digest([]byte(backend), version[:], []byte(target.Mode), []byte(source), bytecode)
	return ret
}

// DigestString is hex encoded digest
func (a *Artifact) DigestString() string {
	return hex.EncodeToString(a.Digest[:])
}

func (a *Artifact) Lines(prefix ...string) *lines.Lines {
	ln := lines.New(prefix...)
	ln.Add("template: %s", a.Template).
		Add("backend: %s", a.Backend).
		Add("target: %s", a.Target).
		Add("source size: %d", len(a.Source))
	if len(a.Bytecode) > 0 {
		ln.Add("bytecode size: %d", len(a.Bytecode))
	}
	if a.Address != "" {
		ln.Add("address: %s", a.Address)
	}
	ln.Add("digest: %s", a.DigestString())
	return ln
}

// Emit emits the program with the emitter and checks the target first. All errors are *EmitterError
func Emit(ctx context.Context, e Emitter, p *pred.Program, target Target) (*Artifact, error) {
	util.Assertf(p != nil, "program is nil")
	if err := target.Check(); err != nil {
		return nil, newEmitterError(e.Name(), err)
	}
	ret, err := e.Emit(ctx, p, target)
	if err != nil {
		if _, ok := IsEmitterError(err); ok {
			return nil, err
		}
		return nil, newEmitterError(e.Name(), err)
	}
	return ret, nil
}
