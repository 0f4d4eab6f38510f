package list_cmd

import (
	"github.com/lunfardo314/lsig/lsig/templates"
	"github.com/lunfardo314/lsig/lsigc/glb"
	"github.com/spf13/cobra"
)

func Init() *cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list [<template>]",
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		Short:   "lists registered templates with their parameters",
		Run:     runListCmd,
	}
	listCmd.InitDefaultHelpCmd()
	return listCmd
}

func runListCmd(_ *cobra.Command, args []string) {
	names := templates.Names()
	if len(args) > 0 {
		names = args
	}
	for _, name := range names {
		t, err := templates.Get(name)
		glb.AssertNoError(err)
		glb.Infof("%s: %s", t.Name(), t.Description())
		glb.Infof("%s", t.Schema().Lines("    ").String())
	}
}
