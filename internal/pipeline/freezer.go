package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dgallion1/docfreeze/internal/config"
	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/dgallion1/docfreeze/internal/freeze"
	"github.com/dgallion1/docfreeze/internal/htmlmd"
	"github.com/dgallion1/docfreeze/internal/notify"
	"github.com/dgallion1/docfreeze/internal/parser"
	"github.com/dgallion1/docfreeze/internal/render"
	"github.com/dgallion1/docfreeze/internal/vault"
)

// Mode selects the freeze pipeline.
type Mode string

const (
	// ModeStructural resolves embeds on the syntax tree and serializes it.
	ModeStructural Mode = "structural"
	// ModeHTML additionally renders the frozen tree to HTML and converts it
	// back to markdown.
	ModeHTML Mode = "html"
)

// Output name suffixes.
const (
	SuffixFreeze     = "_freeze"
	SuffixFreezeHTML = "_freeze_html"
)

// ParseMode accepts "", "structural" and "html".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStructural:
		return ModeStructural, nil
	case ModeHTML:
		return ModeHTML, nil
	}
	return "", fmt.Errorf("unknown freeze mode: %q", s)
}

func (m Mode) suffix() string {
	if m == ModeHTML {
		return SuffixFreezeHTML
	}
	return SuffixFreeze
}

// Result describes a saved frozen document.
type Result struct {
	Source   string        `json:"source"`
	Output   string        `json:"output"`
	Mode     Mode          `json:"mode"`
	Duration time.Duration `json:"duration"`
}

// Opener shows a newly created document to the user.
type Opener func(ctx context.Context, path string) error

// Freezer runs the freeze pipeline against one vault: load, parse, resolve
// embeds, serialize and save.
type Freezer struct {
	vault    vault.Vault
	engine   *freeze.Engine
	settings config.Settings
	notifier notify.Notifier
	opener   Opener
	log      *slog.Logger
}

// FreezerOption configures a Freezer.
type FreezerOption func(*Freezer)

func WithNotifier(n notify.Notifier) FreezerOption {
	return func(f *Freezer) { f.notifier = n }
}

// WithOpener sets the action taken on a saved file when the settings ask
// for it to be opened.
func WithOpener(o Opener) FreezerOption {
	return func(f *Freezer) { f.opener = o }
}

func NewFreezer(v vault.Vault, settings config.Settings, log *slog.Logger, opts ...FreezerOption) *Freezer {
	if log == nil {
		log = slog.Default()
	}
	f := &Freezer{
		vault:    v,
		settings: settings,
		notifier: notify.Discard,
		log:      log,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.engine = freeze.NewEngine(v, v, parser.NewMarkdownParser(doctree.Dialect), log)
	return f
}

// Settings returns the save settings in effect.
func (f *Freezer) Settings() config.Settings {
	return f.settings
}

// Syntax returns the dialect extension set used to parse and serialize.
func (f *Freezer) Syntax() doctree.Syntax {
	return f.engine.Parser().Syntax()
}

// FreezeTree loads the document at docPath and returns it with every embed
// resolved.
func (f *Freezer) FreezeTree(ctx context.Context, docPath string) (*doctree.DocTree, error) {
	content, err := f.vault.Read(ctx, docPath)
	if err != nil {
		return nil, &freeze.ReadError{Path: docPath, Err: err}
	}
	tree := f.engine.Parser().ParseBytes([]byte(content), docPath)
	return f.engine.Resolve(ctx, tree, docPath, freeze.NewChain(docPath))
}

// Freeze returns the self-contained markdown for the document at docPath.
// On error no text is returned.
func (f *Freezer) Freeze(ctx context.Context, docPath string) (string, error) {
	tree, err := f.FreezeTree(ctx, docPath)
	if err != nil {
		return "", err
	}
	return render.NewMarkdown(render.WithSyntax(f.Syntax())).Render(tree), nil
}

// FreezeViaHTML freezes docPath, renders the result to HTML and converts the
// HTML back to markdown. Front matter does not survive the round trip.
func (f *Freezer) FreezeViaHTML(ctx context.Context, docPath string) (string, error) {
	tree, err := f.FreezeTree(ctx, docPath)
	if err != nil {
		return "", err
	}
	syntax := f.Syntax()
	page, err := render.HTML(tree, syntax)
	if err != nil {
		return "", err
	}
	converted, err := htmlmd.Convert(bytes.NewReader(page), tree.Title)
	if err != nil {
		return "", err
	}
	md := render.NewMarkdown(render.WithSyntax(syntax), render.WithTextEmitter(render.EscapingText))
	return md.Render(converted), nil
}

// Produce runs the pipeline selected by mode.
func (f *Freezer) Produce(ctx context.Context, docPath string, mode Mode) (string, error) {
	if mode == ModeHTML {
		return f.FreezeViaHTML(ctx, docPath)
	}
	return f.Freeze(ctx, docPath)
}

// Save writes content next to source, or into the custom directory, under
// the source name with suffix appended. The custom directory is created when
// missing. An existing file is never overwritten.
func (f *Freezer) Save(ctx context.Context, source, content, suffix string) (string, error) {
	out := OutputPath(source, suffix, f.settings)
	if dir := customDirectory(f.settings); dir != "" {
		exists, err := f.vault.Exists(ctx, dir)
		if err != nil {
			return "", &freeze.WriteError{Path: out, Err: err}
		}
		if !exists {
			if err := f.vault.MkdirAll(ctx, dir); err != nil {
				return "", &freeze.WriteError{Path: out, Err: err}
			}
		}
	}
	if err := f.vault.Create(ctx, out, content); err != nil {
		return "", &freeze.WriteError{Path: out, Err: err}
	}
	return out, nil
}

// Run freezes docPath, saves the result and reports progress and failures
// through the notifier. progress, when set, is called as the run enters
// each phase.
func (f *Freezer) Run(ctx context.Context, docPath string, mode Mode, progress func(JobStatus)) (Result, error) {
	start := time.Now()
	log := f.log.With("path", docPath, "mode", mode)
	step := func(s JobStatus) {
		if progress != nil {
			progress(s)
		}
	}

	if mode == ModeHTML {
		notify.Infof(f.notifier, "Freezing file via HTML render...")
	} else {
		notify.Infof(f.notifier, "Freezing file...")
	}

	step(StatusFreezing)
	content, err := f.Produce(ctx, docPath, mode)
	if err != nil {
		log.Error("freeze failed", "error", err)
		notify.Errorf(f.notifier, "Error freezing file: %v", err)
		return Result{}, err
	}

	step(StatusSaving)
	out, err := f.Save(ctx, docPath, content, mode.suffix())
	if err != nil {
		log.Error("save failed", "error", err)
		notify.Errorf(f.notifier, "Error saving frozen file: %v", err)
		return Result{}, err
	}

	res := Result{Source: docPath, Output: out, Mode: mode, Duration: time.Since(start)}
	log.Info("document frozen", "output", out, "duration_ms", res.Duration.Milliseconds())
	if mode == ModeHTML {
		notify.Successf(f.notifier, "File frozen (via HTML) and saved as: %s", path.Base(out))
	} else {
		notify.Successf(f.notifier, "File frozen and saved as: %s", path.Base(out))
	}

	if f.settings.OpenFreezeFile && f.opener != nil {
		if err := f.opener(ctx, out); err != nil {
			log.Warn("open frozen file failed", "output", out, "error", err)
		}
	}
	return res, nil
}

// OutputPath names the frozen copy of source: "dir/base.ext" becomes
// "dir/base<suffix>.ext", or "base<suffix>" when there is no extension. With
// the custom-directory policy and a non-empty directory the file goes there
// instead of next to the source.
func OutputPath(source, suffix string, settings config.Settings) string {
	dir, name := path.Split(source)
	dir = strings.TrimSuffix(dir, "/")

	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i:]
		if ext == "." {
			ext = ""
		}
	}

	if custom := customDirectory(settings); custom != "" {
		dir = custom
	}
	if dir == "" {
		return base + suffix + ext
	}
	return dir + "/" + base + suffix + ext
}

// customDirectory returns the normalized custom directory, or "" when frozen
// files go next to their source.
func customDirectory(settings config.Settings) string {
	if settings.SaveLocation != config.CustomDirectory {
		return ""
	}
	var parts []string
	for _, p := range strings.Split(settings.CustomDirectory, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// IsFreezeError reports whether err came from the freeze pipeline rather
// than from the caller's context.
func IsFreezeError(err error) bool {
	return errors.Is(err, freeze.ErrFreeze)
}
