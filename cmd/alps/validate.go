package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	goalps "github.com/reoring/goalps"
	"github.com/reoring/goalps/i18n"
)

type validateFlags struct {
	source string
	strict bool
	watch  bool
}

func validateCmd(opts *options) *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <pattern>...",
		Short: "Validate documents",
		Long: `Validate parses every file matching the given patterns and reports one
line per file. Patterns support ** for recursive matching. With --watch the
files are validated again whenever they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, f, args)
		},
	}
	cmd.Flags().StringVar(&f.source, "source", "", "Input type for every file (default inferred from the file name)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Reject duplicate object keys")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Validate again when files change")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *options, f *validateFlags, patterns []string) error {
	if cmd.Flags().Changed("strict") {
		opts.cfg.Validate.Strict = f.strict
	}
	files, err := expand(patterns)
	if err != nil {
		return err
	}
	v := &validator{
		out:    cmd.OutOrStdout(),
		source: f.source,
		opts:   opts,
	}
	failed := v.all(files)
	if !f.watch {
		if failed > 0 {
			return failure(fmt.Errorf("%d of %d documents are invalid", failed, len(files)))
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, patterns, time.Duration(opts.cfg.Validate.Debounce), opts.logger, func() {
		files, err := expand(patterns)
		if err != nil {
			opts.logger.Error("expand patterns", "error", err)
			return
		}
		v.all(files)
	})
}

// expand resolves glob patterns to a sorted, de-duplicated file list. A
// pattern without matches is kept as a literal path so that missing files
// are reported.
func expand(patterns []string) ([]string, error) {
	seen := map[string]struct{}{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, usageErrorf("bad pattern %q: %v", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{filepath.Clean(pattern)}
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

type validator struct {
	out    io.Writer
	source string
	opts   *options
}

// all validates files and returns how many failed.
func (v *validator) all(files []string) int {
	failed := 0
	for _, file := range files {
		if err := v.one(file); err != nil {
			failed++
			fmt.Fprintf(v.out, "FAIL %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(v.out, "ok   %s\n", file)
	}
	v.opts.logger.Info("validation finished", "files", len(files), "failed", failed)
	return failed
}

func (v *validator) one(file string) error {
	mt, err := mediaType(v.source, file, "source")
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.err
		}
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	popt := v.opts.cfg.ParseOpt()
	popt.Logger = v.opts.logger
	popt.OnWarning = func(is goalps.Issue) {
		v.opts.logger.Warn("document issue", "file", file, "code", is.Code, "path", is.Path, "message", is.Message)
	}
	doc, err := goalps.Parse(data, mt, popt)
	if err != nil {
		return title(err)
	}
	v.opts.logger.Debug("valid document", "file", file, "descriptors", len(doc.Descriptors))
	return nil
}

// title prefixes an issue error with the localized title of its code.
func title(err error) error {
	code := goalps.CodeOf(err)
	if code == "" {
		return err
	}
	return fmt.Errorf("%s: %w", i18n.T(code, nil), err)
}

// describe names the input an error belongs to.
func describe(input string, err error) error {
	if input == "-" {
		input = "stdin"
	}
	return fmt.Errorf("%s: %w", input, title(err))
}
