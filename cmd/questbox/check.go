package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/isdmx/questbox/validator"
)

var errRejected = errors.New("program rejected by the validator")

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.py|->",
		Short: "Run the static validator without executing the program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			v, err := validator.NewFromConfig(c.cfg)
			if err != nil {
				return err
			}

			result := v.Validate(code)
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return errRejected
			}
			return nil
		},
	}
}
