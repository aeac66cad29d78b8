// Agentkit is a multi-capability AI assistant. A tool-using agent routes
// free-text queries to prompted text capabilities (grammar, sentiment, spam,
// translation, summarization, classification, invoice Q&A); uploads cover
// multi-invoice PDF questions and speech recognition.
//
// Usage:
//
//	agentkit serve [--config configs/agentkit.yaml]
//	agentkit ask "translate 'good morning' to Spanish"
//	agentkit run translation --text "Hello" --lang es
//	agentkit invoices --query "What is the total?" a.pdf b.pdf
//	agentkit transcribe meeting.wav --out transcription.txt
//
// @title       agentkit API
// @version     1.0
// @description Multi-capability AI assistant: a tool-using agent over text capabilities, multi-invoice Q&A and speech recognition.
// @BasePath    /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "agentkit",
		Short:         "Multi-capability AI assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/agentkit.yaml)")

	cfgPath := func() string { return configFile }
	root.AddCommand(
		serveCmd(cfgPath),
		askCmd(cfgPath),
		runCmd(cfgPath),
		invoicesCmd(cfgPath),
		transcribeCmd(cfgPath),
		capabilitiesCmd(cfgPath),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agentkit %s\n", version)
		},
	}
}
