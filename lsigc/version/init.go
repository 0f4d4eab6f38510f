package version

import (
	"github.com/lunfardo314/lsig/global"
	"github.com/lunfardo314/lsig/lsigc/glb"
	"github.com/spf13/cobra"
)

func Init() *cobra.Command {
	verCmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"ver"},
		Args:    cobra.NoArgs,
		Short:   "displays version info of lsigc",
		Run:     runVersionCmd,
	}
	verCmd.InitDefaultHelpCmd()
	return verCmd
}

func runVersionCmd(_ *cobra.Command, _ []string) {
	if glb.IsVerbose() {
		glb.Infof("%s", global.BannerString())
		return
	}
	glb.Infof("    Version:      %s", global.Version)
	glb.Infof("    Commit time:  %s", global.CommitTime)
	glb.Infof("    Commit hash:  %s", global.CommitHash)
}
