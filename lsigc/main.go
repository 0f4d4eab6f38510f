package main

import (
	"os"

	"github.com/lunfardo314/lsig/lsigc/compile_cmd"
	"github.com/lunfardo314/lsig/lsigc/eval_cmd"
	"github.com/lunfardo314/lsig/lsigc/glb"
	"github.com/lunfardo314/lsig/lsigc/list_cmd"
	"github.com/lunfardo314/lsig/lsigc/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "lsigc",
		Short:        "composes and emits stateless authorization programs of logic signature accounts",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose")
	err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	glb.AssertNoError(err)

	rootCmd.AddCommand(
		list_cmd.Init(),
		compile_cmd.Init(),
		eval_cmd.Init(),
		version.Init(),
	)
	rootCmd.InitDefaultHelpCmd()
	if err = rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
