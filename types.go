package goalps

import (
	"log/slog"

	eng "github.com/reoring/goalps/internal/engine"
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement on the raw input.
type Strictness struct {
	OnDuplicateKey Severity // Duplicate object keys in tree formats (JSON, YAML).
}

// ParseOpt bundles parsing options. When several are passed the last one wins.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // Maximum container nesting; 0 means unlimited.
	MaxBytes   int64 // Maximum input size; 0 means unlimited.
	// OnWarning receives non-fatal issues such as duplicate keys under Warn.
	OnWarning func(Issue)
	// Logger receives debug records; nil keeps the facade silent.
	Logger *slog.Logger
}

// WriteOpt bundles writing options. Neither field changes model semantics.
type WriteOpt struct {
	Pretty  bool // Indent the output.
	Verbose bool // Emit values that equal their defaults (type, doc format).
}

// EnforceOptions projects the public options onto the engine enforcement
// wrapper used by tree format decoders.
func (o ParseOpt) EnforceOptions() eng.EnforceOptions {
	opt := eng.EnforceOptions{
		OnDuplicate: toEngineDup(o.Strictness.OnDuplicateKey),
		MaxDepth:    o.MaxDepth,
	}
	if o.OnWarning != nil {
		warn := o.OnWarning
		opt.IssueSink = func(si eng.SimpleIssue) {
			warn(Issue{Code: si.Code, Path: si.Path, Message: si.Message, Line: si.Line, Column: si.Column})
		}
	}
	return opt
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func lastParseOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}

func lastWriteOpt(opts []WriteOpt) WriteOpt {
	if len(opts) == 0 {
		return WriteOpt{}
	}
	return opts[len(opts)-1]
}
