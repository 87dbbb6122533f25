package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/cmd"
	"github.com/Eldar88/openldap/pkg/ldif"
	"github.com/Eldar88/openldap/pkg/ldifstore"
)

func importMain(command *cobra.Command, arguments []string) error {
	backend, err := ldifstore.OpenBackend(importConfiguration.config)
	if err != nil {
		return errors.Wrap(err, "unable to open backend")
	}
	defer backend.Destroy()

	input := os.Stdin
	if len(arguments) == 1 {
		file, openErr := os.Open(arguments[0])
		if openErr != nil {
			return errors.Wrap(openErr, "unable to open input file")
		}
		defer file.Close()
		input = file
	} else if len(arguments) > 1 {
		return errors.New("import accepts at most one input file argument")
	}

	tool := ldifstore.NewToolMode(backend)
	codec := ldif.LineCodec{}

	count := 0
	records, scanErr := splitRecords(input)
	for record := range records {
		entry, parseErr := codec.Parse(record)
		if parseErr != nil {
			return errors.Wrap(parseErr, "unable to parse entry")
		}
		if putErr := tool.Put(entry); putErr != nil {
			return errors.Wrapf(putErr, "unable to import entry %q", entry.DN.String())
		}
		count++
	}
	if err := scanErr(); err != nil {
		return errors.Wrap(err, "unable to read input")
	}
	fmt.Printf("imported %d entries\n", count)
	return nil
}

// splitRecords yields each blank-line-delimited record from r on a channel,
// closing it when the input is exhausted. A scan error ends the channel
// early; the returned function reports it once the channel is closed.
func splitRecords(r io.Reader) (<-chan []byte, func() error) {
	out := make(chan []byte)
	var scanErr error
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		var buf bytes.Buffer
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				if buf.Len() > 0 {
					out <- append([]byte(nil), buf.Bytes()...)
					buf.Reset()
				}
				continue
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		if buf.Len() > 0 {
			out <- append([]byte(nil), buf.Bytes()...)
		}
		scanErr = scanner.Err()
	}()
	return out, func() error { return scanErr }
}

var importCommand = &cobra.Command{
	Use:   "import [<file>]",
	Short: "Import entries from an LDIF stream (default: standard input)",
	Args:  cobra.MaximumNArgs(1),
	Run:   cmd.Mainify(importMain),
}

var importConfiguration struct {
	config string
}

func init() {
	flags := importCommand.Flags()
	flags.StringVar(&importConfiguration.config, "config", "ldifstore.yaml", "Path to the backend configuration file")
}
