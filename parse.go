package goalps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Parse decodes data of the declared media type into a Document. The
// returned error carries Issues describing the first problem found.
func Parse(data []byte, mediaType string, opts ...ParseOpt) (*Document, error) {
	opt := lastParseOpt(opts)
	f, err := lookupOrIssue(mediaType)
	if err != nil {
		return nil, err
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, singleIssue(CodeTruncated, fmt.Sprintf("max bytes %d exceeded", opt.MaxBytes))
	}
	doc, err := f.Decode(data, opt)
	if err != nil {
		logDebug(opt.Logger, "parse failed", slog.String("format", f.Name()), slog.String("error", err.Error()))
		return nil, toIssues(err)
	}
	if doc == nil {
		return nil, singleIssue(CodeInvalidDocument, "decoder returned no document")
	}
	logDebug(opt.Logger, "parsed document",
		slog.String("format", f.Name()),
		slog.Int("bytes", len(data)),
		slog.Int("descriptors", countDescriptors(doc)))
	return doc, nil
}

// ParseReader reads r fully and parses it. When MaxBytes is set it reads at
// most one byte past the limit so oversized input fails without being
// buffered whole.
func ParseReader(r io.Reader, mediaType string, opts ...ParseOpt) (*Document, error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeParseError, Message: err.Error(), Cause: err})
	}
	return Parse(data, mediaType, opts...)
}

// Write serializes doc in the requested media type.
func Write(doc *Document, mediaType string, opts ...WriteOpt) ([]byte, error) {
	f, err := lookupOrIssue(mediaType)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, singleIssue(CodeInvalidDocument, "nil document")
	}
	out, err := f.Encode(doc, lastWriteOpt(opts))
	if err != nil {
		return nil, toIssues(err)
	}
	return out, nil
}

// WriteTo serializes doc and copies the bytes to w.
func WriteTo(w io.Writer, doc *Document, mediaType string, opts ...WriteOpt) error {
	out, err := Write(doc, mediaType, opts...)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("write %s document: %w", mediaType, err)
	}
	return nil
}

// Convert parses data of one media type and writes it in another.
func Convert(data []byte, from, to string, popt ParseOpt, wopt WriteOpt) ([]byte, error) {
	doc, err := Parse(data, from, popt)
	if err != nil {
		return nil, err
	}
	return Write(doc, to, wopt)
}

func countDescriptors(doc *Document) int {
	n := 0
	doc.Walk(func(*Descriptor) bool { n++; return true })
	return n
}

func logDebug(l *slog.Logger, msg string, attrs ...slog.Attr) {
	if l == nil {
		return
	}
	l.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
