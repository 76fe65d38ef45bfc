package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goalps "github.com/reoring/goalps"
)

const sampleJSON = `{"alps":{"descriptor":{"id":"http://e/x","name":"Thing","descriptor":[{"id":"http://e/y"}]}}}`

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMediaType(t *testing.T) {
	cases := []struct {
		explicit, path, want string
	}{
		{"", "profile.json", goalps.MediaTypeJSON},
		{"", "profile.alps+json", goalps.MediaTypeJSON},
		{"", "PROFILE.XML", goalps.MediaTypeXML},
		{"", "a/b/profile.yml", goalps.MediaTypeYAML},
		{"", "profile.yaml", goalps.MediaTypeYAML},
		{"yaml", "profile.json", goalps.MediaTypeYAML},
		{"XML", "", goalps.MediaTypeXML},
		{"application/alps+json", "-", goalps.MediaTypeJSON},
		{"application/json", "", goalps.MediaTypeJSON},
	}
	for _, c := range cases {
		got, err := mediaType(c.explicit, c.path, "source")
		require.NoError(t, err, "%+v", c)
		assert.Equal(t, c.want, got, "%+v", c)
	}
}

func TestMediaType_Errors(t *testing.T) {
	_, err := mediaType("", "profile.txt", "source")
	require.Error(t, err)
	assert.Equal(t, "can not determine the type of [profile.txt], please add --source=(json|xml|yaml)", err.Error())

	_, err = mediaType("", "-", "target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--target=")

	_, err = mediaType("toml", "", "source")
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitUsage, ee.code)
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "", "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "alps version dev\n", out)
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	code, _, errOut := execute(t, "", "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "Error:")
}

func TestConvert_StdinToStdout(t *testing.T) {
	code, out, errOut := execute(t, sampleJSON, "convert", "--source", "json", "--target", "xml")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+
		`<alps version="1.0"><descriptor id="http://e/x" name="Thing"><descriptor id="http://e/y"></descriptor></descriptor></alps>`, out)
}

func TestConvert_FileToFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "profile.json", sampleJSON)
	outPath := filepath.Join(dir, "profile.yaml")

	code, _, errOut := execute(t, "", "convert", in, "-o", outPath, "--pretty")
	require.Equal(t, exitOK, code, errOut)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	doc, err := goalps.Parse(data, goalps.MediaTypeYAML)
	require.NoError(t, err, string(data))
	orig, err := goalps.Parse([]byte(sampleJSON), goalps.MediaTypeJSON)
	require.NoError(t, err)
	assert.True(t, goalps.Equal(orig, doc))
	assert.True(t, strings.HasPrefix(string(data), "alps:\n"), string(data))
}

func TestConvert_TargetFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "alps.yaml", "convert:\n  target: yaml\n  verbose: true\n")
	in := writeFile(t, dir, "profile.json", sampleJSON)

	code, out, errOut := execute(t, "", "--config", cfg, "convert", in)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "type: semantic")
}

func TestConvert_Failures(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"alps":{"descriptor":{"id":"a","descriptor":{"id":"a"}}}}`)

	code, _, errOut := execute(t, "", "convert", bad, "--target", "xml")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "duplicated identifier")
	assert.Contains(t, errOut, "duplicated_id")

	code, _, errOut = execute(t, "", "convert", filepath.Join(dir, "missing.json"), "--target", "xml")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "reading input")

	code, _, errOut = execute(t, sampleJSON, "convert", "--target", "xml")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "--source=(json|xml|yaml)")

	code, _, _ = execute(t, sampleJSON, "convert", "--source", "json", "--target", "csv")
	assert.Equal(t, exitUsage, code)

	code, _, _ = execute(t, "", "convert", "a.json", "b.json")
	assert.Equal(t, exitUsage, code)
}

func TestConvert_JapaneseTitles(t *testing.T) {
	code, _, errOut := execute(t, `{"alps":{"descriptor":{}}}`, "--lang", "ja", "convert", "--source", "json", "--target", "xml")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "識別子がありません")
	assert.Contains(t, errOut, "stdin")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", sampleJSON)
	writeFile(t, dir, "nested/b.xml", `<alps><descriptor id="b"/></alps>`)
	writeFile(t, dir, "nested/deeper/c.yaml", "alps:\n  descriptor:\n    id: c\n")

	code, out, errOut := execute(t, "", "validate", filepath.Join(dir, "**", "*.{json,xml,yaml}"))
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, 3, strings.Count(out, "ok   "), out)

	writeFile(t, dir, "nested/broken.json", `{"alps":{"descriptor":{"id":"x y"}}}`)
	code, out, errOut = execute(t, "", "validate", filepath.Join(dir, "**", "*.json"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "FAIL "+filepath.Join(dir, "nested", "broken.json"))
	assert.Contains(t, out, "malformed URI")
	assert.Contains(t, errOut, "1 of 2 documents are invalid")
}

func TestValidate_MissingFileAndUnknownType(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.json")
	other := writeFile(t, dir, "notes.txt", "hello")

	code, out, _ := execute(t, "", "validate", missing, other)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "FAIL "+missing)
	assert.Contains(t, out, "FAIL "+other+": can not determine the type")
}

func TestValidate_Strict(t *testing.T) {
	dir := t.TempDir()
	dup := writeFile(t, dir, "dup.json", `{"alps":{"version":"1.0","version":"1.0"}}`)

	code, _, errOut := execute(t, "", "validate", dup)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "document issue")

	code, out, _ := execute(t, "", "validate", "--strict", dup)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "duplicate_key")
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "x/a.json", "{}")
	b := writeFile(t, dir, "b.json", "{}")
	writeFile(t, dir, "x/skip.txt", "")

	files, err := expand([]string{filepath.Join(dir, "**", "*.json"), b})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, files)

	files, err = expand([]string{filepath.Join(dir, "none", "*.json")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "none", "*.json")}, files)
}

func TestWatchHelpers(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "profiles", "**", "*.json")
	assert.Equal(t, []string{filepath.Join(dir, "profiles")}, watchRoots([]string{pattern, pattern}))
	assert.True(t, matchesAny([]string{pattern}, filepath.Join(dir, "profiles", "a", "b.json")))
	assert.False(t, matchesAny([]string{pattern}, filepath.Join(dir, "profiles", "a", "b.xml")))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(writeFile(t, dir, "ok.yaml", "log_level: debug\nlang: ja\nvalidate:\n  strict: true\n  max_depth: 8\n  debounce: 1s\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, 8, cfg.Validate.MaxDepth)
	assert.Equal(t, int64(16<<20), cfg.Validate.MaxBytes)
	assert.Equal(t, time.Second, time.Duration(cfg.Validate.Debounce))
	assert.Equal(t, goalps.Error, cfg.ParseOpt().Strictness.OnDuplicateKey)

	cfg, err = LoadConfig(writeFile(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, goalps.Warn, cfg.ParseOpt().Strictness.OnDuplicateKey)

	_, err = LoadConfig(writeFile(t, dir, "unknown.yaml", "colour: red\n"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadConfig(writeFile(t, dir, "invalid.yaml", "lang: fr\n"))
	assert.ErrorContains(t, err, "lang must be en or ja")

	_, err = LoadConfig(writeFile(t, dir, "bad-duration.yaml", "validate:\n  debounce: soon\n"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadConfig(filepath.Join(dir, "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_TOML(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(writeFile(t, dir, "alps.toml", "lang = \"ja\"\n\n[convert]\ntarget = \"xml\"\npretty = true\n\n[validate]\nstrict = true\ndebounce = \"150ms\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "xml", cfg.Convert.Target)
	assert.True(t, cfg.Convert.Pretty)
	assert.Equal(t, 150*time.Millisecond, time.Duration(cfg.Validate.Debounce))
	assert.Equal(t, 256, cfg.Validate.MaxDepth)

	_, err = LoadConfig(writeFile(t, dir, "unknown.toml", "colour = \"red\"\n"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestBadLogLevelIsUsageError(t *testing.T) {
	code, _, errOut := execute(t, "", "--log-level", "loud", "version")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "log_level must be one of")
}

func TestWatch_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "**", "*.json")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, []string{pattern}, 20*time.Millisecond, newLogger(io.Discard, "warn"), func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "profile.json", sampleJSON)
	writeFile(t, dir, "ignored.txt", "x")

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("no change reported")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.json"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
