package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
	entries = ["src/index.js"]

	[[assets]]
	path = "src/index.js"
	id = "index"

	[[assets.dependencies]]
	specifier = "./math"
	target = "src/math.js"
	imports = ["add"]

	[[assets]]
	path = "src/math.js"
	id = "math"
	exports = ["add"]
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(dedent.Dedent(contents)), 0o644))
	}
	return dir
}

func runForTest(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	stdout, stderr := bytes.Buffer{}, bytes.Buffer{}
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestConcatToStdout(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"hoist.toml":   testManifest,
		"src/index.js": "$hoist$require(\"index\", \"./math\");\nconsole.log(add(1, 2));\n",
		"src/math.js":  "function add(a, b) { return a + b }\n",
	})

	code, stdout, stderr := runForTest(t, "concat", filepath.Join(dir, "hoist.toml"), "--omit-provenance")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "function $hoist$interopDefault(a) {\n"), stdout)
	assert.True(t, strings.HasSuffix(stdout, `function add(a, b) {
  return a + b;
}
$hoist$require("index", "./math");
console.log(add(1, 2));
`), stdout)
	assert.Contains(t, stderr, "info: Concatenated 2 modules (0 wrapped, 0 excluded)")
}

func TestConcatToOutfile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"hoist.toml":   testManifest,
		"src/index.js": "$hoist$require(\"index\", \"./math\");\n",
		"src/math.js":  "var add;\n",
	})
	outfile := filepath.Join(dir, "dist", "out.js")

	code, stdout, stderr := runForTest(t, "concat", filepath.Join(dir, "hoist.toml"),
		"--outfile", outfile, "--minify-whitespace", "--log-level=warning")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	js, err := os.ReadFile(outfile)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(js), "var add;// ASSET: src/index.js\n$hoist$require(\"index\",\"./math\");"), string(js))
	assert.Contains(t, string(js), "// ASSET: src/math.js\nvar add;")
}

func TestConcatReportsErrorsWithSource(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"hoist.toml":   testManifest,
		"src/index.js": "$hoist$require(\"index\", \"./maths\");\n",
		"src/math.js":  "var add;\n",
	})

	code, stdout, stderr := runForTest(t, "concat", filepath.Join(dir, "hoist.toml"), "--color=false")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `index.js:1:24: error: Could not find a dependency for "./maths" in asset "index" (did you mean "./math"?)`)
	assert.Contains(t, stderr, "$hoist$require(\"index\", \"./maths\");\n")
	assert.Contains(t, stderr, "1 error\n")
}

func TestConcatReportsSyntaxErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"hoist.toml":   testManifest,
		"src/index.js": "$hoist$require(\"index\", \"./math\");\n",
		"src/math.js":  "var = 1;\n",
	})

	code, _, stderr := runForTest(t, "concat", filepath.Join(dir, "hoist.toml"), "--color=false")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "src/math.js:1:4: error: ")
}

func TestConcatReportsManifestErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"hoist.toml": `entries = ["missing.js"]`,
	})

	code, _, stderr := runForTest(t, "concat", filepath.Join(dir, "hoist.toml"), "--color=false")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `error: hoist.toml: entry "missing.js" is not one of the assets`)
}

func TestBadFlags(t *testing.T) {
	code, _, stderr := runForTest(t, "concat", "hoist.toml", "--log-level=verbos", "--color=false")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `error: invalid value "verbos" for "--log-level" (did you mean "verbose"?)`)

	code, _, stderr = runForTest(t, "concat", "hoist.toml", "--color=maybe")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `invalid value "maybe" for "--color" (expected true or false)`)

	code, _, stderr = runForTest(t, "concat", "--color=false")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "accepts 1 arg(s), received 0")

	code, _, stderr = runForTest(t, "concat", "hoist.toml", "--concurrency=lots")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `invalid argument "lots" for "--concurrency" flag`)
}

type syncBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.String()
}

func TestWatchRebuildsOnChange(t *testing.T) {
	watchDebounce = 10 * time.Millisecond
	dir := writeProject(t, map[string]string{
		"hoist.toml":   testManifest,
		"src/index.js": "$hoist$require(\"index\", \"./math\");\n",
		"src/math.js":  "var add = 1;\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	done := make(chan int)
	go func() {
		done <- run(ctx, []string{"concat", filepath.Join(dir, "hoist.toml"), "--watch", "--omit-provenance"}, stdout, stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "Watching 3 files for changes")
	}, 5*time.Second, 10*time.Millisecond, stderr.String())
	assert.Contains(t, stdout.String(), "var add = 1;\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "math.js"), []byte("var add = 2;\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "var add = 2;\n")
	}, 5*time.Second, 10*time.Millisecond, stderr.String())

	cancel()
	assert.Equal(t, 0, <-done)
}
