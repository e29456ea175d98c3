package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/toolapi"
)

// NewInvokeCommand reads newline-delimited ToolRequest JSON from stdin and
// writes the matching ToolResponse JSON, one per line, to stdout. This is
// the JSON-over-stdio surface a chat adapter or MCP-style bridge drives
// the orchestrator's five named tools through.
func NewInvokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Serve the plan_task/dispatch_plan/... tool surface over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := toolapi.New(cfg.BaseDir)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			out := cmd.OutOrStdout()

			for scanner.Scan() {
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}

				var req toolapi.ToolRequest
				if err := json.Unmarshal(line, &req); err != nil {
					resp := toolapi.ToolResponse{Error: &toolapi.ToolError{Code: "INVALID_PLAN", Message: err.Error()}}
					data, _ := json.Marshal(resp)
					fmt.Fprintln(out, string(data))
					continue
				}

				resp := svc.Invoke(req)
				data, err := json.Marshal(resp)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			}
			return scanner.Err()
		},
	}

	return cmd
}
