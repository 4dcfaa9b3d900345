// SPDX-License-Identifier: BSD-2-Clause
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyply-dev/hyply"
)

// newLangCmd carries over the teacher's -l/-e introspection flags as
// first-class subcommands (§(new) Supplemented features): a cheap
// reflection of the catalog's tables, not a detection operation.
func newLangCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Inspect the built-in language catalog",
	}
	cmd.AddCommand(newLangListCmd(), newLangExtensionsCmd())
	return cmd
}

func newLangListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every language the catalog recognizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := hyply.Open()
			if err != nil {
				return err
			}
			renderLanguageList(os.Stdout, id.Languages())
			return nil
		},
	}
}

func newLangExtensionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extensions [language]",
		Short: "List the file extensions and filenames recognized for a language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := hyply.Open()
			if err != nil {
				return err
			}
			name := args[0]
			for _, l := range id.Languages() {
				if l.Name != name {
					continue
				}
				if len(l.Extensions) > 0 {
					fmt.Printf("extensions: %v\n", l.Extensions)
				}
				if len(l.Filenames) > 0 {
					fmt.Printf("filenames:  %v\n", l.Filenames)
				}
				if len(l.Interpreters) > 0 {
					fmt.Printf("interpreters: %v\n", l.Interpreters)
				}
				return nil
			}
			return fmt.Errorf("unknown language %q", name)
		},
	}
}
