package clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shinji-kodama/vestige/internal/classify"
	"github.com/shinji-kodama/vestige/internal/excise"
	"github.com/shinji-kodama/vestige/internal/extract"
	"github.com/shinji-kodama/vestige/internal/model"
)

// keywordClassifier labels text containing "(" or "import " as code and
// fails on text containing fail, when set.
type keywordClassifier struct {
	fail string
}

func (k keywordClassifier) Predict(_ context.Context, text string) (model.Distribution, error) {
	if k.fail != "" && strings.Contains(text, k.fail) {
		return model.Distribution{}, errors.New("classifier failed")
	}
	if strings.Contains(text, "(") || strings.Contains(text, "import ") {
		return classify.OneHot(model.Code), nil
	}
	return classify.OneHot(model.NotCode), nil
}

func (keywordClassifier) ConcurrencySafe() bool { return true }

func newCleaner() *Cleaner {
	return &Cleaner{
		Classifier: keywordClassifier{},
		Extractors: extract.DefaultRegistry(),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const pythonSource = "import os\n# import sys\nx = os.getcwd()  # print(x)\n# Explain the result\n"

const pythonCleaned = "import os\nx = os.getcwd()\n# Explain the result\n"

func TestCleanFile_Structured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	writeFile(t, path, pythonSource)

	res := newCleaner().CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	assert.Equal(t, pythonCleaned, readFile(t, path))
	assert.Equal(t, model.ModeStructured, res.Mode)
	assert.Equal(t, path, res.Output)
	assert.Equal(t, 3, res.Spans)
	assert.Len(t, res.Removals, 2)
	assert.True(t, res.Written)
}

// TestCleanFile_SeparateOutput writes to a new path and leaves the input
// untouched.
func TestCleanFile_SeparateOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "app.py")
	out := filepath.Join(dir, "out", "nested", "app.py")
	writeFile(t, in, pythonSource)

	res := newCleaner().CleanFile(context.Background(), in, out)
	require.NoError(t, res.Err)

	assert.Equal(t, pythonSource, readFile(t, in))
	assert.Equal(t, pythonCleaned, readFile(t, out))
}

func TestCleanFile_PreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.py")
	writeFile(t, path, pythonSource)
	require.NoError(t, os.Chmod(path, 0o750))

	res := newCleaner().CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestCleanFile_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	writeFile(t, path, pythonSource)

	c := newCleaner()
	c.DryRun = true
	res := c.CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	assert.Equal(t, pythonSource, readFile(t, path))
	assert.Len(t, res.Removals, 2)
	assert.False(t, res.Written)
	assert.Equal(t, strings.Split(pythonCleaned, "\n"), res.Lines)
}

// TestCleanFile_UnchangedNotRewritten skips the write when nothing is code.
func TestCleanFile_UnchangedNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	writeFile(t, path, "x = 1  # explain x\n")

	res := newCleaner().CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	assert.False(t, res.Written)
	assert.False(t, res.Changed())
	assert.Equal(t, "x = 1  # explain x\n", readFile(t, path))
}

func TestCleanFile_Unsupported(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "main.rs")
	out := filepath.Join(dir, "out.rs")
	writeFile(t, in, "// let x = 1;\n")

	res := newCleaner().CleanFile(context.Background(), in, out)
	require.Error(t, res.Err)

	assert.ErrorIs(t, res.Err, model.ErrUnsupportedFormat)
	assert.Contains(t, res.Err.Error(), "file type unsupported")
	assert.Contains(t, res.Err.Error(), "supported: .py, .pyw, .txt")
	assert.Equal(t, "// let x = 1;\n", readFile(t, in))
	assert.NoFileExists(t, out)
}

func TestCleaner_SupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".py", ".pyw", ".txt"}, newCleaner().SupportedExtensions())
}

// TestCleanFile_LogsLanguage reports the grammar used for a structured file
// at debug level.
func TestCleanFile_LogsLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	writeFile(t, path, pythonSource)

	core, logs := observer.New(zapcore.DebugLevel)
	c := newCleaner()
	c.Logger = zap.New(core)
	c.DryRun = true

	res := c.CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	entries := logs.FilterMessage("extracted comments").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "python", entries[0].ContextMap()["language"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["spans"])
}

func TestCleanFile_MissingInput(t *testing.T) {
	res := newCleaner().CleanFile(context.Background(), filepath.Join(t.TempDir(), "gone.py"), "")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, model.ErrIO)
}

// TestCleanFile_ClassifierFailureWritesNothing aborts the file on a
// classifier error, leaving it untouched.
func TestCleanFile_ClassifierFailureWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	writeFile(t, path, "# import sys\n# boom\n")

	c := newCleaner()
	c.Classifier = keywordClassifier{fail: "boom"}
	res := c.CleanFile(context.Background(), path, "")

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), path)
	assert.False(t, res.Written)
	assert.Equal(t, "# import sys\n# boom\n", readFile(t, path))
}

func TestCleanFile_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	writeFile(t, path, pythonSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newCleaner().CleanFile(ctx, path, "")
	require.Error(t, res.Err)
	assert.Equal(t, pythonSource, readFile(t, path))
}

// TestCleanFile_PlainText reviews whole lines and keeps the final newline.
func TestCleanFile_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "Some notes\nx = compute()\nmore notes\n")

	var asked []string
	c := newCleaner()
	c.Confirm = func(line string) bool {
		asked = append(asked, line)
		return true
	}
	res := c.CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	assert.Equal(t, model.ModePlain, res.Mode)
	assert.Equal(t, "Some notes\nmore notes\n", readFile(t, path))
	assert.Equal(t, []string{"x = compute()"}, asked)
	assert.Equal(t, 3, res.Spans, "the empty element after the final newline is not reviewed")
}

// TestCleanFile_PlainTextDeclined keeps everything when nobody confirms.
func TestCleanFile_PlainTextDeclined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NOTES.TXT")
	writeFile(t, path, "x = compute()")

	c := newCleaner()
	c.Confirm = excise.AssumeNo
	res := c.CleanFile(context.Background(), path, "")
	require.NoError(t, res.Err)

	assert.Equal(t, "x = compute()", readFile(t, path))
	assert.False(t, res.Written)
}

func TestModeFor(t *testing.T) {
	c := newCleaner()

	tests := []struct {
		path    string
		want    model.Mode
		wantErr bool
	}{
		{"a.py", model.ModeStructured, false},
		{"A.PYW", model.ModeStructured, false},
		{"notes.txt", model.ModePlain, false},
		{"main.go", "", true},
		{"Makefile", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mode, err := c.ModeFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}
