// Command ldifstore-tool drives a directory-service storage backend offline:
// bulk import/export of the mirrored .ldif tree, and an interactive bind
// check against a stored entry, without running a full directory server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/cmd"
)

func rootMain(command *cobra.Command, arguments []string) error {
	command.Help()
	return nil
}

var rootCommand = &cobra.Command{
	Use:   "ldifstore-tool",
	Short: "ldifstore-tool drives the ldifstore directory backend offline",
	Run:   cmd.Mainify(rootMain),
}

var rootConfiguration struct {
	help bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		importCommand,
		exportCommand,
		bindCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
