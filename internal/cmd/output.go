package cmd

import (
	"encoding/json"
	"fmt"
)

// printJSON writes v to stdout as indented JSON, the uniform output shape
// every subcommand here uses so the CLI is scriptable.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
