package glb

import (
	"fmt"
	"strings"

	"github.com/lunfardo314/lsig/global"
	"github.com/lunfardo314/lsig/lsig/emit"
	"github.com/lunfardo314/lsig/lsig/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const DefaultProfileName = "lsigc"

// ReadInConfig reads the profile <name>.yaml from the current directory. Missing profile is not an error,
// the defaults are used then
func ReadInConfig() {
	configName := viper.GetString("config")
	if configName == "" {
		configName = DefaultProfileName
	}
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName(configName)
	viper.SetConfigFile("./" + configName + ".yaml")

	viper.SetDefault("teal.version", emit.DefaultVersion)
	viper.SetDefault("teal.max_source", emit.DefaultMaxSourceSize)
	viper.SetDefault("algod.endpoint", "http://localhost:4001")

	viper.SetEnvPrefix("LSIGC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read-in environment variables that match

	_ = viper.ReadInConfig()
	Verbosef("using profile: %s", viper.ConfigFileUsed())
}

func AddFlagConfig(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "profile name")
	err := viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	AssertNoError(err)
}

// without Var does not work
var (
	paramAssignments []string
	paramsInline     string
	paramsFile       string
)

func AddFlagsParams(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&paramsInline, "params", "", "template parameter overrides as YAML or JSON object")
	cmd.PersistentFlags().StringArrayVarP(&paramAssignments, "param", "p", nil, "template parameter override NAME=VALUE. Repeatable")
	cmd.PersistentFlags().StringVar(&paramsFile, "params-file", "", "YAML file with template parameter overrides")
}

// ParamSources returns overrides in the order they apply: the file, the inline object, then
// single assignments. Later sources win
func ParamSources() ([]params.Source, error) {
	ret := make([]params.Source, 0, 3)
	if paramsFile != "" {
		ret = append(ret, params.FromFile(paramsFile))
	}
	if paramsInline != "" {
		ret = append(ret, params.FromYAML([]byte(paramsInline)))
	}
	if len(paramAssignments) > 0 {
		m := make(params.Map)
		for _, a := range paramAssignments {
			name, value, found := strings.Cut(a, "=")
			name = strings.TrimSpace(name)
			if !found || name == "" {
				return nil, fmt.Errorf("wrong parameter assignment '%s', expected NAME=VALUE", a)
			}
			m[name] = value
		}
		ret = append(ret, m)
	}
	return ret, nil
}

func Logger() *zap.SugaredLogger {
	verbosity := 0
	if IsVerbose() {
		verbosity = 1
	}
	return global.NewLogger(verbosity)
}

func Target() emit.Target {
	return emit.Target{
		Version: viper.GetInt("teal.version"),
		Mode:    emit.ModeSignature,
	}
}

// Emitter creates the emitter of the backend configured in the profile
func Emitter(backend string, log *zap.SugaredLogger) (emit.Emitter, error) {
	opts := []emit.ConfigOption{
		emit.WithLogger(log),
		emit.WithMaxSourceSize(viper.GetInt("teal.max_source")),
	}
	switch backend {
	case emit.BackendTEAL:
		return emit.NewTEAL(opts...), nil
	case emit.BackendEasyFL:
		return emit.NewEasyFL(opts...), nil
	case emit.BackendAlgod:
		return emit.NewAlgod(viper.GetString("algod.endpoint"), viper.GetString("algod.token"), opts...)
	}
	return nil, fmt.Errorf("unknown backend '%s'. Expected one of: %s, %s, %s",
		backend, emit.BackendTEAL, emit.BackendEasyFL, emit.BackendAlgod)
}
