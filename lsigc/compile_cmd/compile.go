package compile_cmd

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"

	"github.com/lunfardo314/lsig/lsig/emit"
	"github.com/lunfardo314/lsig/lsig/templates"
	"github.com/lunfardo314/lsig/lsigc/glb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Init() *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile <template>",
		Args:  cobra.ExactArgs(1),
		Short: "binds template parameters and emits the artifact",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			glb.ReadInConfig()
		},
		Run: runCompileCmd,
	}
	glb.AddFlagConfig(compileCmd)
	glb.AddFlagsParams(compileCmd)

	compileCmd.PersistentFlags().StringP("backend", "b", emit.BackendTEAL, "emitter backend: teal, easyfl or algod")
	err := viper.BindPFlag("backend", compileCmd.PersistentFlags().Lookup("backend"))
	glb.AssertNoError(err)

	compileCmd.PersistentFlags().Int("version", emit.DefaultVersion, "target language version")
	err = viper.BindPFlag("teal.version", compileCmd.PersistentFlags().Lookup("version"))
	glb.AssertNoError(err)

	compileCmd.PersistentFlags().StringP("out", "o", "", "file to write the source to. Stdout if empty")
	err = viper.BindPFlag("output", compileCmd.PersistentFlags().Lookup("out"))
	glb.AssertNoError(err)

	compileCmd.InitDefaultHelpCmd()
	return compileCmd
}

func runCompileCmd(_ *cobra.Command, args []string) {
	t, err := templates.Get(args[0])
	glb.AssertNoError(err)

	sources, err := glb.ParamSources()
	glb.AssertNoError(err)

	log := glb.Logger()
	defer func() { _ = log.Sync() }()

	p, par, err := templates.Compose(t, log, sources...)
	glb.AssertNoError(err)
	glb.Verbosef("parameters:\n%s", par.Lines("    ").String())

	e, err := glb.Emitter(viper.GetString("backend"), log)
	glb.AssertNoError(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := emit.Emit(ctx, e, p, glb.Target())
	glb.AssertNoError(err)

	if out := viper.GetString("output"); out != "" {
		err = os.WriteFile(out, []byte(a.Source), 0666)
		glb.AssertNoError(err)
		glb.Infof("source has been written to '%s'", out)
	} else {
		glb.Infof("%s", a.Source)
	}
	if len(a.Bytecode) > 0 {
		glb.Infof("bytecode: %s", hex.EncodeToString(a.Bytecode))
	}
	glb.Infof("%s", a.Lines("    ").String())
}
