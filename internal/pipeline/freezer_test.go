package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docfreeze/internal/config"
	"github.com/dgallion1/docfreeze/internal/freeze"
	"github.com/dgallion1/docfreeze/internal/notify"
	"github.com/dgallion1/docfreeze/internal/vault"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sameDir() config.Settings {
	return config.Settings{SaveLocation: config.SameDirectory}
}

func customDir(dir string) config.Settings {
	return config.Settings{SaveLocation: config.CustomDirectory, CustomDirectory: dir}
}

func newTestFreezer(files map[string]string, settings config.Settings) (*Freezer, *vault.Memory, *notify.Recorder) {
	v := vault.NewMemory(files)
	rec := &notify.Recorder{}
	return NewFreezer(v, settings, quietLogger(), WithNotifier(rec)), v, rec
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		suffix   string
		settings config.Settings
		want     string
	}{
		{"same directory", "notes/a.md", SuffixFreeze, sameDir(), "notes/a_freeze.md"},
		{"custom directory", "notes/a.md", SuffixFreeze, customDir("archive"), "archive/a_freeze.md"},
		{"custom directory normalized", "notes/a.md", SuffixFreeze, customDir("/archive//old/"), "archive/old/a_freeze.md"},
		{"empty custom directory", "notes/a.md", SuffixFreeze, customDir("//"), "notes/a_freeze.md"},
		{"custom directory ignored when not selected", "notes/a.md", SuffixFreeze,
			config.Settings{SaveLocation: config.SameDirectory, CustomDirectory: "archive"}, "notes/a_freeze.md"},
		{"vault root", "a.md", SuffixFreeze, sameDir(), "a_freeze.md"},
		{"no extension", "notes/README", SuffixFreeze, sameDir(), "notes/README_freeze"},
		{"last dot separates extension", "a.b.md", SuffixFreeze, sameDir(), "a.b_freeze.md"},
		{"trailing dot", "a.", SuffixFreeze, sameDir(), "a_freeze"},
		{"html variant", "notes/a.md", SuffixFreezeHTML, sameDir(), "notes/a_freeze_html.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputPath(tt.source, tt.suffix, tt.settings); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeStructural, "structural": ModeStructural, "HTML": ModeHTML} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("pdf"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFreezer_RunSavesNextToSource(t *testing.T) {
	f, v, rec := newTestFreezer(map[string]string{
		"notes/a.md": "# A\n\n![[b]]\n",
		"notes/b.md": "Body of b.\n",
	}, sameDir())

	res, err := f.Run(context.Background(), "notes/a.md", ModeStructural, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "notes/a_freeze.md" || res.Source != "notes/a.md" || res.Mode != ModeStructural {
		t.Errorf("unexpected result %+v", res)
	}

	got, err := v.Read(context.Background(), "notes/a_freeze.md")
	if err != nil {
		t.Fatalf("frozen file not created: %v", err)
	}
	if got != "# A\n\nBody of b.\n" {
		t.Errorf("unexpected frozen content %q", got)
	}

	want := []notify.Notice{
		{Level: notify.LevelInfo, Message: "Freezing file..."},
		{Level: notify.LevelSuccess, Message: "File frozen and saved as: a_freeze.md"},
	}
	if !reflect.DeepEqual(rec.Notices(), want) {
		t.Errorf("unexpected notices %+v", rec.Notices())
	}
}

func TestFreezer_RunCreatesCustomDirectory(t *testing.T) {
	f, v, _ := newTestFreezer(map[string]string{"notes/a.md": "text\n"}, customDir("archive"))

	res, err := f.Run(context.Background(), "notes/a.md", ModeStructural, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "archive/a_freeze.md" {
		t.Errorf("expected archive/a_freeze.md, got %q", res.Output)
	}
	if ok, _ := v.Exists(context.Background(), "archive"); !ok {
		t.Error("expected custom directory to be created")
	}
}

func TestFreezer_RunProgress(t *testing.T) {
	f, _, _ := newTestFreezer(map[string]string{"a.md": "x\n"}, sameDir())
	var phases []JobStatus
	if _, err := f.Run(context.Background(), "a.md", ModeStructural, func(s JobStatus) { phases = append(phases, s) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(phases, []JobStatus{StatusFreezing, StatusSaving}) {
		t.Errorf("unexpected phases %v", phases)
	}
}

func TestFreezer_NoOutputOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		message string
		target  any
	}{
		{
			"cycle",
			map[string]string{"d.md": "![[e]]\n", "e.md": "![[d]]\n"},
			"Error freezing file: cyclic embed: d.md -> e.md -> d.md",
			new(*freeze.CyclicEmbedError),
		},
		{
			"missing target",
			map[string]string{"d.md": "before\n\n![[nope]]\n"},
			"Error freezing file: file not found: nope (embedded in d.md)",
			new(*freeze.UnresolvedEmbedError),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, v, rec := newTestFreezer(tt.files, sameDir())
			before := v.Paths()

			_, err := f.Run(context.Background(), "d.md", ModeStructural, nil)
			if !errors.Is(err, freeze.ErrFreeze) || !errors.As(err, tt.target) {
				t.Fatalf("unexpected error %v", err)
			}
			if !reflect.DeepEqual(v.Paths(), before) {
				t.Errorf("expected no file to be created, vault has %v", v.Paths())
			}
			last, _ := rec.Last()
			if last.Level != notify.LevelError || last.Message != tt.message {
				t.Errorf("unexpected notice %+v", last)
			}
		})
	}
}

func TestFreezer_MissingRoot(t *testing.T) {
	f, _, _ := newTestFreezer(map[string]string{}, sameDir())
	_, err := f.Freeze(context.Background(), "gone.md")
	var re *freeze.ReadError
	if !errors.As(err, &re) || re.Path != "gone.md" || !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("expected read error for gone.md, got %v", err)
	}
}

func TestFreezer_ExistingOutputIsWriteError(t *testing.T) {
	f, v, rec := newTestFreezer(map[string]string{
		"a.md":        "new\n",
		"a_freeze.md": "old\n",
	}, sameDir())

	_, err := f.Run(context.Background(), "a.md", ModeStructural, nil)
	var we *freeze.WriteError
	if !errors.As(err, &we) || we.Path != "a_freeze.md" || !errors.Is(err, vault.ErrExists) {
		t.Fatalf("expected write error, got %v", err)
	}
	if got, _ := v.Read(context.Background(), "a_freeze.md"); got != "old\n" {
		t.Errorf("existing file overwritten: %q", got)
	}
	last, _ := rec.Last()
	if !strings.HasPrefix(last.Message, "Error saving frozen file: ") {
		t.Errorf("unexpected notice %+v", last)
	}
}

func TestFreezer_OpensWhenConfigured(t *testing.T) {
	for _, open := range []bool{true, false} {
		var opened []string
		v := vault.NewMemory(map[string]string{"a.md": "x\n"})
		settings := sameDir()
		settings.OpenFreezeFile = open
		f := NewFreezer(v, settings, quietLogger(), WithOpener(func(_ context.Context, p string) error {
			opened = append(opened, p)
			return nil
		}))
		if _, err := f.Run(context.Background(), "a.md", ModeStructural, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if open && !reflect.DeepEqual(opened, []string{"a_freeze.md"}) {
			t.Errorf("expected a_freeze.md to be opened, got %v", opened)
		}
		if !open && len(opened) != 0 {
			t.Errorf("expected nothing opened, got %v", opened)
		}
	}
}

func TestFreezer_FreezeKeepsRootFrontMatterAndSyntax(t *testing.T) {
	f, _, _ := newTestFreezer(map[string]string{
		"a.md": "---\ntitle: x\n---\n\nSee [[Note|shown]] and #tag.\n\n![[b]]\n",
		"b.md": "---\nb: 1\n---\n\nFrom b.\n",
	}, sameDir())

	got, err := f.Freeze(context.Background(), "a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "---\ntitle: x\n---\n\nSee [[Note|shown]] and #tag.\n\nFrom b.\n"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestFreezer_RunViaHTML(t *testing.T) {
	f, v, rec := newTestFreezer(map[string]string{
		"notes/a.md": "---\ntitle: x\n---\n\n# A\n\nIntro with [[Link]] and #tag.\n\n![[b]]\n",
		"notes/b.md": "- one\n- two\n",
	}, sameDir())

	res, err := f.Run(context.Background(), "notes/a.md", ModeHTML, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "notes/a_freeze_html.md" {
		t.Errorf("unexpected output path %q", res.Output)
	}
	got, _ := v.Read(context.Background(), res.Output)
	want := "# A\n\nIntro with [[Link]] and #tag.\n\n- one\n- two\n"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
	if notices := rec.Notices(); notices[0].Message != "Freezing file via HTML render..." ||
		notices[len(notices)-1].Message != "File frozen (via HTML) and saved as: a_freeze_html.md" {
		t.Errorf("unexpected notices %+v", notices)
	}
}
