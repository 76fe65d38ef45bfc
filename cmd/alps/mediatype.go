package main

import (
	"fmt"
	"strings"

	goalps "github.com/reoring/goalps"
)

// shortTypes maps the names accepted by --source/--target to media types.
var shortTypes = map[string]string{
	"json": goalps.MediaTypeJSON,
	"xml":  goalps.MediaTypeXML,
	"yaml": goalps.MediaTypeYAML,
	"yml":  goalps.MediaTypeYAML,
}

// mediaType resolves the media type of an input or output. An explicit type
// (short name or registered media type) wins; otherwise it is inferred from
// the file name. flag names the option to suggest in errors.
func mediaType(explicit, path, flag string) (string, error) {
	if explicit != "" {
		if mt, ok := shortTypes[strings.ToLower(explicit)]; ok {
			return mt, nil
		}
		if f, ok := goalps.LookupFormat(explicit); ok {
			return f.MediaType(), nil
		}
		return "", usageErrorf("unknown type [%s], expected one of [json, xml, yaml]", explicit)
	}
	if mt, ok := inferMediaType(path); ok {
		return mt, nil
	}
	if path != "" && path != "-" {
		return "", usageErrorf("can not determine the type of [%s], please add --%s=(json|xml|yaml)", path, flag)
	}
	return "", usageErrorf("can not determine the type, please add --%s=(json|xml|yaml)", flag)
}

// inferMediaType guesses the media type from a file name suffix: .json and
// +json, .xml and +xml, .yaml, .yml and +yaml.
func inferMediaType(path string) (string, bool) {
	p := strings.ToLower(path)
	for _, s := range []struct {
		suffixes []string
		mt       string
	}{
		{[]string{".json", "+json"}, goalps.MediaTypeJSON},
		{[]string{".xml", "+xml"}, goalps.MediaTypeXML},
		{[]string{".yaml", ".yml", "+yaml"}, goalps.MediaTypeYAML},
	} {
		for _, suffix := range s.suffixes {
			if strings.HasSuffix(p, suffix) {
				return s.mt, true
			}
		}
	}
	return "", false
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func failure(err error) error {
	return &exitError{code: exitFailure, err: err}
}
