package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/cmd"
	"github.com/Eldar88/openldap/pkg/buildinfo"
)

func versionMain(command *cobra.Command, arguments []string) error {
	fmt.Println(buildinfo.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   cmd.Mainify(versionMain),
}
