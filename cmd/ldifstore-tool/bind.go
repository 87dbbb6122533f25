package main

import (
	"context"
	"fmt"

	"github.com/mutagen-io/gopass"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/cmd"
	"github.com/Eldar88/openldap/pkg/ldif"
	"github.com/Eldar88/openldap/pkg/ldifstore"
)

func bindMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("bind requires exactly one DN argument")
	}

	backend, err := ldifstore.OpenBackend(bindConfiguration.config)
	if err != nil {
		return errors.Wrap(err, "unable to open backend")
	}
	defer backend.Destroy()
	backend.Password = ldif.SHA256PasswordChecker{}

	dn, err := ldif.ParseDN(arguments[0])
	if err != nil {
		return errors.Wrap(err, "invalid DN")
	}

	fmt.Print("Password: ")
	password, err := gopass.GetPasswd()
	if err != nil {
		return errors.Wrap(err, "unable to read password")
	}

	result := backend.Bind(context.Background(), ldifstore.BindRequest{DN: dn, Password: string(password)})
	if !result.OK() {
		return result
	}
	fmt.Println("bind succeeded")
	return nil
}

var bindCommand = &cobra.Command{
	Use:   "bind <dn>",
	Short: "Check a bind (password authentication) against a stored entry",
	Args:  cobra.ExactArgs(1),
	Run:   cmd.Mainify(bindMain),
}

var bindConfiguration struct {
	config string
}

func init() {
	flags := bindCommand.Flags()
	flags.StringVar(&bindConfiguration.config, "config", "ldifstore.yaml", "Path to the backend configuration file")
}
