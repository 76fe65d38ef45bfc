package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	goalps "github.com/reoring/goalps"
)

type convertFlags struct {
	source  string
	target  string
	output  string
	pretty  bool
	verbose bool
}

func convertCmd(opts *options) *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert [file|-]",
		Short: "Convert a document to another encoding",
		Long: `Convert reads a document from a file (or stdin when the argument is
absent or "-"), validates it and writes it in the target encoding to
--output or stdout. Types are inferred from file names when --source or
--target are not given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runConvert(cmd, opts, f, input)
		},
	}
	cmd.Flags().StringVar(&f.source, "source", "", "Input type (json, xml, yaml or a media type)")
	cmd.Flags().StringVar(&f.target, "target", "", "Output type (json, xml, yaml or a media type)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Indent the output (default true when writing to a terminal)")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Write default values explicitly")
	return cmd
}

func runConvert(cmd *cobra.Command, opts *options, f *convertFlags, input string) error {
	cfg := opts.cfg
	wopt := goalps.WriteOpt{Pretty: cfg.Convert.Pretty, Verbose: cfg.Convert.Verbose}
	switch {
	case cmd.Flags().Changed("pretty"):
		wopt.Pretty = f.pretty
	case f.output == "" || f.output == "-":
		wopt.Pretty = wopt.Pretty || isTerminal(cmd.OutOrStdout())
	}
	if cmd.Flags().Changed("verbose") {
		wopt.Verbose = f.verbose
	}

	from, err := mediaType(f.source, input, "source")
	if err != nil {
		return err
	}
	target := f.target
	if target == "" {
		if _, ok := inferMediaType(f.output); !ok {
			target = cfg.Convert.Target
		}
	}
	to, err := mediaType(target, f.output, "target")
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), input)
	if err != nil {
		return failure(err)
	}
	popt := cfg.ParseOpt()
	popt.Logger = opts.logger
	popt.OnWarning = func(is goalps.Issue) { opts.logger.Warn("document issue", "code", is.Code, "path", is.Path, "message", is.Message) }

	doc, err := goalps.Parse(data, from, popt)
	if err != nil {
		return failure(describe(input, err))
	}
	out, err := goalps.Write(doc, to, wopt)
	if err != nil {
		return failure(describe(input, err))
	}
	opts.logger.Debug("converted document", "input", input, "from", from, "to", to, "bytes", len(out))

	if f.output == "" || f.output == "-" {
		_, err = io.Copy(cmd.OutOrStdout(), bytes.NewReader(out))
		return err
	}
	if err := os.WriteFile(f.output, out, 0o644); err != nil {
		return failure(fmt.Errorf("writing output: %w", err))
	}
	return nil
}

func readInput(stdin io.Reader, input string) ([]byte, error) {
	if input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
