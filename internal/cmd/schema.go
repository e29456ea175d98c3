package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/toolapi"
)

// NewSchemaCommand prints the JSON Schema describing one tool's input.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <tool>",
		Short: "Print the JSON Schema for a tool's input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := toolapi.Schema(args[0])
			if err != nil {
				return err
			}
			fmt.Println(s)
			return nil
		},
	}
	return cmd
}
