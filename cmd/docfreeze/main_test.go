package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/pflag"
)

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for p, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// run executes the CLI with fresh flag values and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"FREEZE_SETTINGS_FILE", "SAVE_LOCATION", "CUSTOM_DIRECTORY", "OPEN_FREEZE_FILE", "VAULT_BACKEND"} {
		t.Setenv(k, "")
	}
	// Flag values and their Changed state survive between Execute calls.
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

var noteFiles = map[string]string{
	"notes/a.md": "# A\n\n![[b]]\n",
	"notes/b.md": "Body of b.\n",
	"loop.md":    "![[loop]]\n",
}

func TestFreezeCommand(t *testing.T) {
	dir := writeVault(t, noteFiles)
	if _, err := run(t, "freeze", "--vault", dir, "--open=false", "notes/a.md"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "notes", "a_freeze.md"))
	if err != nil {
		t.Fatalf("frozen file not written: %v", err)
	}
	if string(got) != "# A\n\nBody of b.\n" {
		t.Errorf("unexpected frozen content %q", got)
	}
}

func TestFreezeCommand_OpensByDefault(t *testing.T) {
	var opened []string
	orig := openFile
	openFile = func(p string) error {
		opened = append(opened, p)
		return nil
	}
	t.Cleanup(func() { openFile = orig })

	dir := writeVault(t, noteFiles)
	if _, err := run(t, "freeze", "--vault", dir, "notes/a.md"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opened) != 1 || opened[0] != filepath.Join(dir, "notes", "a_freeze.md") {
		t.Fatalf("expected the frozen file to be opened, got %v", opened)
	}

	opened = nil
	dir = writeVault(t, noteFiles)
	if _, err := run(t, "freeze", "--vault", dir, "--open=false", "notes/a.md"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("--open=false must not open anything, got %v", opened)
	}
	if usage := freezeCmd.Flags().Lookup("open").Usage; !strings.Contains(usage, "true unless configured") {
		t.Errorf("help must state the effective default, got %q", usage)
	}
}

func TestFreezeCommand_CustomDirAndDOCX(t *testing.T) {
	dir := writeVault(t, noteFiles)
	docx := filepath.Join(t.TempDir(), "a.docx")
	if _, err := run(t, "freeze", "--vault", dir, "--open=false", "--custom-dir", "/out//frozen/", "--docx", docx, "notes/a.md"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "frozen", "a_freeze.md")); err != nil {
		t.Errorf("expected file in custom directory: %v", err)
	}
	data, err := os.ReadFile(docx)
	if err != nil || !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("expected a docx archive, got %d bytes, %v", len(data), err)
	}
}

func TestFreezeCommand_Stdout(t *testing.T) {
	dir := writeVault(t, noteFiles)
	out, err := run(t, "freeze", "--vault", dir, "--stdout", "notes/a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "# A\n\nBody of b.\n" {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes", "a_freeze.md")); !os.IsNotExist(err) {
		t.Error("--stdout must not save a file")
	}
}

func TestFreezeCommand_Failure(t *testing.T) {
	dir := writeVault(t, noteFiles)
	_, err := run(t, "freeze", "--vault", dir, "--open=false", "loop.md")
	if err != errReported {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "loop_freeze.md")); !os.IsNotExist(err) {
		t.Error("no output file expected on failure")
	}
}

func TestFreezeCommand_InvalidSaveLocation(t *testing.T) {
	dir := writeVault(t, noteFiles)
	if _, err := run(t, "freeze", "--vault", dir, "--save-location", "nowhere", "notes/a.md"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDiffCommand(t *testing.T) {
	dir := writeVault(t, noteFiles)
	out, err := run(t, "diff", "--vault", dir, "notes/a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"--- notes/a.md\n", "-![[b]]\n", "+Body of b.\n", " # A\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in diff output:\n%s", want, out)
		}
	}
}

func TestEmbedsCommand(t *testing.T) {
	dir := writeVault(t, noteFiles)
	out, err := run(t, "embeds", "--vault", dir, "notes/a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "![[b]]") || !strings.Contains(out, "notes/b.md") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLineDiff(t *testing.T) {
	got := lineDiff("a\nb\n", "a\nc\n")
	want := []diffLine{
		{diffmatchpatch.DiffEqual, "a"},
		{diffmatchpatch.DiffDelete, "b"},
		{diffmatchpatch.DiffInsert, "c"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
