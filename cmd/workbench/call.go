package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/workbench"
	"github.com/aretw0/workbench/internal/presentation/tui"
)

// callCmd invokes a single action locally, without a server in between.
// Useful for scripting and for inspecting tool output while developing.
var callCmd = &cobra.Command{
	Use:   "call <action>",
	Short: "Invoke a single action locally",
	Long: `Invokes one registered action with JSON arguments and prints the result.
When stdout is a terminal, markdown content is rendered for reading;
otherwise the raw response envelope is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := buildLogger(cmd)
		cfg := buildConfig(cmd, "workbench-call", workbench.TransportStdio, 0, logger)

		registry, err := buildRegistry(cfg)
		if err != nil {
			fmt.Printf("Error building action registry: %v\n", err)
			os.Exit(1)
		}

		rawArgs, _ := cmd.Flags().GetString("args")
		actionArgs := map[string]any{}
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &actionArgs); err != nil {
				fmt.Printf("Error parsing --args: %v\n", err)
				os.Exit(1)
			}
		}

		resp, err := registry.Invoke(context.Background(), args[0], actionArgs)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			printPretty(resp)
		} else {
			raw, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(raw))
		}

		if !resp.OK() {
			os.Exit(1)
		}
	},
}

func printPretty(resp workbench.Response) {
	if !resp.OK() {
		fmt.Printf("FAILED (%s): %s\n", resp.ErrKind(), resp.ErrMessage())
		return
	}
	render := tui.NewRenderer()
	out, err := render(resp.Content())
	if err != nil {
		fmt.Println(resp.Content())
		return
	}
	fmt.Print(out)
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringP("args", "a", "", "Action arguments as a JSON object")
}
