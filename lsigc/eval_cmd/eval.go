package eval_cmd

import (
	"context"
	"os"

	"github.com/lunfardo314/lsig/lsig/emit"
	"github.com/lunfardo314/lsig/lsig/templates"
	"github.com/lunfardo314/lsig/lsig/txn"
	"github.com/lunfardo314/lsig/lsigc/glb"
	"github.com/spf13/cobra"
)

// without Var does not work
var (
	groupFile  string
	selfIndex  int
	withEasyFL bool
)

func Init() *cobra.Command {
	evalCmd := &cobra.Command{
		Use:   "eval <template>",
		Args:  cobra.ExactArgs(1),
		Short: "evaluates the composed template against the transaction group described in YAML file",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			glb.ReadInConfig()
		},
		Run: runEvalCmd,
	}
	glb.AddFlagConfig(evalCmd)
	glb.AddFlagsParams(evalCmd)

	evalCmd.PersistentFlags().StringVarP(&groupFile, "group", "g", "", "YAML file with the transaction group")
	evalCmd.PersistentFlags().IntVar(&selfIndex, "self", -1, "index of the authorized transaction. Overrides 'self' of the group file")
	evalCmd.PersistentFlags().BoolVar(&withEasyFL, "easyfl", false, "also evaluate the EasyFL artifact and compare")

	evalCmd.InitDefaultHelpCmd()
	return evalCmd
}

func runEvalCmd(_ *cobra.Command, args []string) {
	glb.Assertf(groupFile != "", "transaction group file is not specified")

	t, err := templates.Get(args[0])
	glb.AssertNoError(err)

	sources, err := glb.ParamSources()
	glb.AssertNoError(err)

	log := glb.Logger()
	defer func() { _ = log.Sync() }()

	p, _, err := templates.Compose(t, log, sources...)
	glb.AssertNoError(err)

	data, err := os.ReadFile(groupFile)
	glb.AssertNoError(err)
	group, self, err := txn.GroupFromYAML(data)
	glb.AssertNoError(err)
	if selfIndex >= 0 {
		glb.AssertNoError(group.CheckAuthorizing(selfIndex))
		self = selfIndex
	}
	glb.Verbosef("group of %d transaction(s), authorized index %d", len(group), self)

	approved, err := p.Run(group, self)
	if err != nil {
		glb.Verbosef("evaluation failed: %v", err)
	}
	report(approved)

	if !withEasyFL {
		return
	}
	a, err := emit.Emit(context.Background(), emit.NewEasyFL(emit.WithLogger(log)), p, emit.DefaultTarget())
	glb.AssertNoError(err)
	approvedEasyFL, err := emit.EvalEasyFL(a, group, self)
	if err != nil {
		glb.Verbosef("EasyFL evaluation failed: %v", err)
	}
	glb.Infof("EasyFL:")
	report(approvedEasyFL)
	glb.Assertf(approved == approvedEasyFL, "EasyFL evaluation disagrees with the predicate")
}

func report(approved bool) {
	if approved {
		glb.Infof("APPROVE")
	} else {
		glb.Infof("REJECT")
	}
}
