package templates

import (
	"fmt"
	"sync"

	"github.com/lunfardo314/lsig/global"
	"github.com/lunfardo314/lsig/lsig/params"
	"github.com/lunfardo314/lsig/lsig/pred"
	"github.com/lunfardo314/lsig/util"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Template is a parameterized program. Build is pure: the same parameter set always gives the same program
type Template interface {
	Name() string
	Description() string
	Schema() params.Schema
	Build(par *params.Set) (*pred.Program, error)
}

var (
	registry      = make(map[string]Template)
	registryMutex sync.RWMutex
)

func init() {
	Register(DepositLsig())
	Register(DynamicFee())
}

func Register(t Template) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	_, already := registry[t.Name()]
	util.Assertf(!already, "template '%s' is already registered", t.Name())
	registry[t.Name()] = t
}

func Get(name string) (Template, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	ret, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown template '%s'", name)
	}
	return ret, nil
}

// Names returns sorted names of registered templates
func Names() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	ret := maps.Keys(registry)
	slices.Sort(ret)
	return ret
}

// Compose binds parameters of the template and builds the program. Nothing is built unless every
// parameter is resolved
func Compose(t Template, log *zap.SugaredLogger, overrides ...params.Source) (*pred.Program, *params.Set, error) {
	if log == nil {
		log = global.NopLogger()
	}
	log = log.Named("compose")
	par, err := params.Bind(t.Schema(), overrides...)
	if err != nil {
		return nil, nil, err
	}
	if ov := par.Overridden(); len(ov) > 0 {
		log.Infof("template '%s': overridden parameters %v", t.Name(), ov)
	}
	p, err := t.Build(par)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("composed template '%s' with parameters:\n%s%s", t.Name(), par.Lines("   "), p.Lines("   "))
	return p, par, nil
}
