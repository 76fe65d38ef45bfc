package goalps

import (
	"errors"
	"fmt"

	eng "github.com/reoring/goalps/internal/engine"
)

// Errorf creates a single-issue error with the given code and formatted
// message. Codecs use it for every validation failure.
func Errorf(code, format string, args ...any) error {
	return Issues{{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// AtPath sets the path of every issue in err that has none yet. Errors that
// do not carry Issues are returned unchanged.
func AtPath(err error, path string) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "" {
			it.Path = path
		}
		out[i] = it
	}
	return out
}

// AtPosition records a line/column on every issue in err that has none yet.
func AtPosition(err error, line, column int) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Line == 0 {
			it.Line, it.Column = line, column
		}
		out[i] = it
	}
	return out
}

// Normalize converts errors raised by decoders (engine enforcement errors,
// syntax errors) into Issues. Nil stays nil.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	return toIssues(err)
}

// toIssues normalizes any error produced below the facade into Issues.
func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Line: ie.Line, Column: ie.Column})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Message: err.Error(), Cause: err})
}

func singleIssue(code, msg string) Issues { return AppendIssues(nil, Issue{Code: code, Message: msg}) }
