package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/cmd"
	"github.com/Eldar88/openldap/pkg/ldif"
	"github.com/Eldar88/openldap/pkg/ldifstore"
)

func exportMain(command *cobra.Command, arguments []string) error {
	backend, err := ldifstore.OpenBackend(exportConfiguration.config)
	if err != nil {
		return errors.Wrap(err, "unable to open backend")
	}
	defer backend.Destroy()

	tool := ldifstore.NewToolMode(backend)
	codec := ldif.LineCodec{}

	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	count := 0
	entry, err := tool.First()
	if err != nil {
		return errors.Wrap(err, "unable to enumerate suffix")
	}
	for entry != nil {
		data, serializeErr := codec.Serialize(entry)
		if serializeErr != nil {
			return errors.Wrapf(serializeErr, "unable to serialize entry %q", entry.DN.String())
		}
		if _, writeErr := writer.Write(data); writeErr != nil {
			return errors.Wrap(writeErr, "unable to write entry")
		}
		if _, writeErr := writer.WriteString("\n"); writeErr != nil {
			return errors.Wrap(writeErr, "unable to write entry separator")
		}
		count++
		tool.Get()
		entry, err = tool.Next()
		if err != nil {
			return errors.Wrap(err, "unable to continue enumeration")
		}
	}
	fmt.Fprintf(os.Stderr, "exported %d entries\n", count)
	return nil
}

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export every entry under the configured suffix as LDIF to standard output",
	Run:   cmd.Mainify(exportMain),
}

var exportConfiguration struct {
	config string
}

func init() {
	flags := exportCommand.Flags()
	flags.StringVar(&exportConfiguration.config, "config", "ldifstore.yaml", "Path to the backend configuration file")
}
