// Package middleware holds the HTTP boundary helpers shared by the framework
// adapters (middleware/echo, middleware/gin) and usable with net/http as is.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	gojson "github.com/goccy/go-json"

	goalps "github.com/reoring/goalps"
)

// ctxKeyDocument is a typed context key for the parsed request document.
type ctxKeyDocument struct{}

// ContextWithDocument attaches a parsed document to the context.
func ContextWithDocument(ctx context.Context, doc *goalps.Document) context.Context {
	return context.WithValue(ctx, ctxKeyDocument{}, doc)
}

// DocumentFromContext retrieves the document stored by ContextWithDocument.
func DocumentFromContext(ctx context.Context) (*goalps.Document, bool) {
	doc, ok := ctx.Value(ctxKeyDocument{}).(*goalps.Document)
	return doc, ok && doc != nil
}

// DefaultParseOpt returns a recommended default for HTTP boundaries.
// - Duplicate keys are errors
// - Request bodies are limited to 1 MiB and 64 levels of nesting
func DefaultParseOpt() goalps.ParseOpt {
	return goalps.ParseOpt{
		Strictness: goalps.Strictness{OnDuplicateKey: goalps.Error},
		MaxBytes:   1 << 20,
		MaxDepth:   64,
	}
}

// OrDefault returns opt, or DefaultParseOpt when opt is the zero value.
func OrDefault(opt goalps.ParseOpt) goalps.ParseOpt {
	if opt.Strictness.OnDuplicateKey == goalps.Ignore && opt.MaxBytes == 0 && opt.MaxDepth == 0 && opt.OnWarning == nil && opt.Logger == nil {
		return DefaultParseOpt()
	}
	return opt
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []goalps.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// StatusFor maps a parse error to a response status: 415 for media types
// without a registered format, 413 for oversized bodies and 400 otherwise.
func StatusFor(err error) int {
	switch {
	case goalps.HasCode(err, goalps.CodeUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case goalps.HasCode(err, goalps.CodeTruncated):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// ParseRequest parses the request body using its Content-Type. A missing
// Content-Type is treated as application/alps+json.
func ParseRequest(r *http.Request, opt goalps.ParseOpt) (*goalps.Document, error) {
	if r.Body == nil {
		return nil, goalps.Issues{{Code: goalps.CodeParseError, Path: "/", Message: "empty request body"}}
	}
	return goalps.ParseReader(r.Body, requestMediaType(r), opt)
}

func requestMediaType(r *http.Request) string {
	mt := r.Header.Get("Content-Type")
	if strings.TrimSpace(mt) == "" {
		return goalps.MediaTypeJSON
	}
	return mt
}

// Negotiate picks the response media type from the Accept header: the first
// listed type with a registered format wins. Wildcards and an absent header
// select fallback.
func Negotiate(accept, fallback string) string {
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		if mt == "" || mt == "*/*" || mt == "application/*" {
			continue
		}
		if f, ok := goalps.LookupFormat(mt); ok {
			return f.MediaType()
		}
	}
	return fallback
}

// Validate parses every request body into a document stored in the request
// context. Invalid bodies are answered with the Issues payload as JSON.
func Validate(opt goalps.ParseOpt) func(http.Handler) http.Handler {
	return ValidateObserved(opt, nil)
}

// ValidateObserved is Validate recording every outcome in m (nil disables it).
func ValidateObserved(opt goalps.ParseOpt, m *Metrics) func(http.Handler) http.Handler {
	opt = OrDefault(opt)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			doc, err := ParseRequest(r, opt)
			m.Observe(r, err)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDocument(r.Context(), doc)))
		})
	}
}

// WriteError answers with the status of err and its Issues payload.
func WriteError(w http.ResponseWriter, err error) {
	iss, ok := goalps.AsIssues(err)
	if !ok {
		iss = goalps.Issues{{Code: goalps.CodeParseError, Message: err.Error()}}
	}
	writeJSON(w, StatusFor(err), ErrorPayload(iss))
}

// Respond writes doc in the encoding negotiated from the request's Accept
// header, falling back to application/alps+json.
func Respond(w http.ResponseWriter, r *http.Request, doc *goalps.Document, opt goalps.WriteOpt) error {
	mt := Negotiate(r.Header.Get("Accept"), goalps.MediaTypeJSON)
	out, err := goalps.Write(doc, mt, opt)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", mt)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(out)
	return err
}

var errNoDocument = errors.New("no document in request context")

// RequestDocument returns the request document or an error when the
// Validate middleware did not run.
func RequestDocument(r *http.Request) (*goalps.Document, error) {
	doc, ok := DocumentFromContext(r.Context())
	if !ok {
		return nil, errNoDocument
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := gojson.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
