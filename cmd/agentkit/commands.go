package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/agentkit/internal/batch"
	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/document"
	"github.com/nadzzz/agentkit/internal/memory"
	"github.com/nadzzz/agentkit/internal/message"
	"github.com/nadzzz/agentkit/internal/transcribe"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func askCmd(cfgPath func() string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask the agent a free-text question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfgPath())
			if err != nil {
				return err
			}
			sid := memory.NewSessionID()
			resp, err := a.dispatcher.Ask(cmd.Context(), sid, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), message.NewAskResponse(sid, resp))
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			if tool := resp.LastTool(); tool != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "agent used: %s\n", tool)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func runCmd(cfgPath func() string) *cobra.Command {
	var (
		text  string
		lang  string
		query string
		pdf   string
		extra map[string]string
	)

	cmd := &cobra.Command{
		Use:   "run <capability>",
		Short: "Invoke one capability directly",
		Long:  "Invoke one capability directly. Run `agentkit capabilities` for the list of names and parameters.",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return defaultCapabilityNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfgPath())
			if err != nil {
				return err
			}

			in := map[string]string{}
			for k, v := range extra {
				in[k] = v
			}
			if text != "" {
				in["text"] = text
			}
			if lang != "" {
				in["language"] = lang
			}
			if query != "" {
				in["query"] = query
			}
			if pdf != "" {
				data, err := os.ReadFile(pdf)
				if err != nil {
					return fmt.Errorf("reading %s: %w", pdf, err)
				}
				invoice, err := document.ExtractText(data)
				if err != nil {
					return fmt.Errorf("extracting %s: %w", pdf, err)
				}
				in["invoice_text"] = invoice
			}

			res, err := a.registry.Invoke(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), message.NewInvokeResponse(args[0], res)); err != nil {
				return err
			}
			if res.IsError() {
				return errors.New(res.ErrorMessage())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "input text")
	cmd.Flags().StringVar(&lang, "lang", "", "target language for translation")
	cmd.Flags().StringVar(&query, "query", "", "question for invoice_qa")
	cmd.Flags().StringVar(&pdf, "pdf", "", "PDF whose text is passed as invoice_text")
	cmd.Flags().StringToStringVar(&extra, "arg", nil, "additional key=value arguments")
	return cmd
}

func invoicesCmd(cfgPath func() string) *cobra.Command {
	var (
		query  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "invoices --query <question> <pdf>...",
		Short: "Ask the same question of several PDF invoices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(query) == "" {
				return errors.New("--query is required")
			}
			docs := make([]batch.Document, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				docs = append(docs, batch.Document{Name: filepath.Base(path), Data: data})
			}

			a, err := newApp(cmd.Context(), cfgPath())
			if err != nil {
				return err
			}
			res, err := a.batcher.Process(cmd.Context(), docs, query)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), message.InvoicesResponse{Query: query, Results: res, Summary: res.Flatten()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Flatten())
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "question to ask of every invoice")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the per-invoice results as JSON")
	return cmd
}

func transcribeCmd(cfgPath func() string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a WAV or MP3 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			ct := transcribe.DetectContentType(contentTypeFromExt(args[0]), data)

			a, err := newApp(cmd.Context(), cfgPath())
			if err != nil {
				return err
			}
			res, err := a.service.Transcribe(cmd.Context(), data, ct)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding transcript: %w", err)
			}
			if out != "" {
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			}
			if res.IsError() {
				return errors.New(res.ErrorMessage())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the transcript JSON to this file (e.g. transcription.txt)")
	return cmd
}

func contentTypeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	}
	return ""
}

func capabilitiesCmd(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the registered capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cfgPath())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), message.CapabilitiesResponse{Capabilities: a.registry.List()})
		},
	}
}

// defaultCapabilityNames lists the built-in capabilities for shell completion
// without loading configuration.
func defaultCapabilityNames() []string {
	reg := capability.NewRegistry()
	if err := capability.RegisterDefaults(reg, capability.NewService(nil, nil, capability.Models{})); err != nil {
		return nil
	}
	descs := reg.List()
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}
