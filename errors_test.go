package goalps_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	goalps "github.com/reoring/goalps"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := goalps.Issues{
		{Path: "/a", Code: goalps.CodeMissingID},
		{Path: "/b", Code: goalps.CodeInvalidType},
		{Path: "/c", Code: goalps.CodeInvalidLink},
		{Path: "/d", Code: goalps.CodeInvalidHref},
	}
	s := iss.Error()
	if !strings.HasPrefix(s, "missing_id at /a") {
		t.Fatalf("unexpected summary: %s", s)
	}
	if !strings.HasSuffix(s, "(total 4)") {
		t.Fatalf("expected total count in summary: %s", s)
	}
	if goalps.Issues(nil).Error() != "" {
		t.Fatalf("empty issues must render empty")
	}
}

func TestIssue_ErrorWithPosition(t *testing.T) {
	is := goalps.Issue{Code: goalps.CodeDuplicatedID, Path: "/alps/descriptor", Message: "duplicate", Line: 3, Column: 7}
	if got, want := is.Error(), "duplicated_id at /alps/descriptor: duplicate (line 3, column 7)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestErrorf_AtPath_AtPosition(t *testing.T) {
	err := goalps.Errorf(goalps.CodeInvalidName, "bad %s", "name")
	err = goalps.AtPath(err, "/alps/descriptor/name")
	err = goalps.AtPath(err, "/ignored")
	err = goalps.AtPosition(err, 2, 5)
	err = goalps.AtPosition(err, 9, 9)

	iss, ok := goalps.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	is := iss[0]
	if is.Path != "/alps/descriptor/name" || is.Line != 2 || is.Column != 5 || is.Message != "bad name" {
		t.Fatalf("first path and position must win: %+v", is)
	}

	plain := errors.New("boom")
	if goalps.AtPath(plain, "/x") != plain {
		t.Fatalf("errors without issues must pass through")
	}
}

func TestCodeOf_HasCode_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("context: %w", goalps.Issues{{Code: goalps.CodeInvalidLink}, {Code: goalps.CodeTruncated}})
	if goalps.CodeOf(err) != goalps.CodeInvalidLink {
		t.Fatalf("CodeOf must return the first code, got %q", goalps.CodeOf(err))
	}
	if !goalps.HasCode(err, goalps.CodeTruncated) || goalps.HasCode(err, goalps.CodeMissingID) {
		t.Fatalf("HasCode mismatch")
	}
	if goalps.CodeOf(errors.New("x")) != "" || goalps.CodeOf(nil) != "" {
		t.Fatalf("CodeOf must be empty for foreign errors")
	}
}

func TestNormalize(t *testing.T) {
	if goalps.Normalize(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	cause := errors.New("unexpected EOF")
	err := goalps.Normalize(cause)
	iss, ok := goalps.AsIssues(err)
	if !ok || iss[0].Code != goalps.CodeParseError {
		t.Fatalf("foreign errors become parse_error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must stay reachable")
	}
}
