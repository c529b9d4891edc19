package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/steplang"
	"github.com/zephyrtronium/steplang/internal/srccache"
)

// execute runs the command line with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if errs.Len() > 0 {
		t.Log(errs.String())
	}
	return out.String(), err
}

// write creates a file in dir with the given contents and returns its path.
func write(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	return p
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	sum := write(t, dir, "sum.st", `a := 3. a + 4`)
	hello := write(t, dir, "hello.st", `<print: 'hi'>. nil`)
	first := write(t, dir, "first.st", `x := 2`)
	second := write(t, dir, "second.st", `x * 5`)

	cases := map[string]struct {
		args []string
		want string
	}{
		"print":       {[]string{"run", "-p", sum}, "7\n"},
		"quiet":       {[]string{"run", sum}, ""},
		"output":      {[]string{"run", hello}, "hi\n"},
		"sharedScope": {[]string{"run", "-p", first, second}, "10\n"},
		"compiled":    {[]string{"run", "--compile", "-p", first, second}, "10\n"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.want, out)
		})
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	bad := write(t, dir, "bad.st", "1 +")
	_, err := execute(t, "run", bad)
	assert.True(t, steplang.IsKind(err, steplang.SyntaxFailure), "got %v", err)

	_, err = execute(t, "run", filepath.Join(dir, "missing.st"))
	assert.Error(t, err)

	_, err = execute(t, "run")
	assert.Error(t, err, "run needs a file")

	cfg := write(t, dir, "deep.yaml", "max_depth: 20\n")
	deep := write(t, dir, "deep.st", `f := nil. f := [f value]. f value`)
	_, err = execute(t, "--config", cfg, "run", deep)
	assert.True(t, steplang.IsKind(err, steplang.DepthExceeded), "got %v", err)

	badcfg := write(t, dir, "bad.yaml", "faults:\n  native: shrug\n")
	_, err = execute(t, "--config", badcfg, "run", deep)
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	dir := t.TempDir()
	sum := write(t, dir, "sum.st", `1 + 2`)
	out, err := execute(t, "compile", sum)
	require.NoError(t, err)
	assert.Equal(t, "(unit \"sum\" (params) (temps)\n  (send (num 1) \"+\" (num 2)))\n", out)

	out, err = execute(t, "compile", "--steps", sum)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "(body"), out)

	frob := write(t, dir, "frob.st", `<'(frob)'>`)
	_, err = execute(t, "compile", frob)
	assert.True(t, steplang.IsKind(err, steplang.GenerationFailure), "got %v", err)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cache.db")
	sum := write(t, dir, "sum.st", `[:a | a * 2] value: 21`)
	for i := 0; i < 2; i++ {
		out, err := execute(t, "--cache", db, "run", "--compile", "-p", sum)
		require.NoError(t, err)
		assert.Equal(t, "42\n", out)
	}
	c, err := srccache.Open(db)
	require.NoError(t, err)
	defer c.Close()
	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "steplang "+steplang.Version+" on "), out)
}

func TestClosureName(t *testing.T) {
	assert.Equal(t, "sum", closureName("/tmp/x/sum.st"))
	assert.Equal(t, "noext", closureName("noext"))
}
