// Package filesystem reads transcript files from a local directory and
// optionally watches it for new or changed files.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.TranscriptSource = (*Source)(nil)

// DefaultDebounce is how long a file must be quiet before Watch emits it.
const DefaultDebounce = 300 * time.Millisecond

// DefaultExtensions are the transcript formats read by default.
var DefaultExtensions = []string{".md", ".txt", ".srt", ".vtt"}

// Option configures a Source.
type Option func(*Source)

// WithExtensions restricts the source to the given file extensions.
func WithExtensions(exts ...string) Option {
	return func(s *Source) {
		s.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			s.extensions[strings.ToLower(e)] = true
		}
	}
}

// WithDebounce sets the quiet period used by Watch.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) { s.debounce = d }
}

// Source is a flat directory of transcript files. Subdirectories and hidden
// files are ignored.
type Source struct {
	root       string
	extensions map[string]bool
	debounce   time.Duration
}

// New creates a source rooted at dir.
func New(dir string, opts ...Option) *Source {
	s := &Source{root: dir, debounce: DefaultDebounce}
	WithExtensions(DefaultExtensions...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the watched directory.
func (s *Source) Root() string {
	return s.root
}

// List returns every transcript in the directory sorted by filename.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading transcript directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && s.accepts(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]domain.SourceDocument, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.read(filepath.Join(s.root, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Source) accepts(name string) bool {
	if isHidden(name) {
		return false
	}
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

func (s *Source) read(path string) (domain.SourceDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return domain.SourceDocument{
		Filename: filepath.Base(path),
		Path:     path,
		Raw:      string(content),
	}, nil
}

// Watch emits documents as files are created or written. Each path is
// emitted once it has been quiet for the debounce period.
func (s *Source) Watch(ctx context.Context) (<-chan domain.SourceDocument, <-chan error) {
	docs := make(chan domain.SourceDocument)
	errs := make(chan error, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errs <- fmt.Errorf("creating watcher: %w", err)
		close(errs)
		close(docs)
		return docs, errs
	}
	if err := watcher.Add(s.root); err != nil {
		watcher.Close()
		errs <- fmt.Errorf("watching %s: %w", s.root, err)
		close(errs)
		close(docs)
		return docs, errs
	}

	go s.watchLoop(ctx, watcher, docs, errs)
	return docs, errs
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, docs chan<- domain.SourceDocument, errs chan<- error) {
	defer close(errs)
	defer close(docs)
	defer watcher.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		ready   = make(chan string)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			path, ok := s.handleFsEvent(event)
			if !ok {
				continue
			}
			mu.Lock()
			if t, exists := pending[path]; exists {
				t.Reset(s.debounce)
			} else {
				pending[path] = time.AfterFunc(s.debounce, func() {
					select {
					case ready <- path:
					case <-ctx.Done():
					}
				})
			}
			mu.Unlock()

		case path := <-ready:
			mu.Lock()
			delete(pending, path)
			mu.Unlock()

			doc, err := s.read(path)
			if err != nil {
				// The file may have been removed before the debounce fired.
				logger.Debug("watch: skipping %s: %v", path, err)
				continue
			}
			select {
			case docs <- doc:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			default:
				logger.Warn("watch error: %v", err)
			}
		}
	}
}

// handleFsEvent returns the path to ingest for a create or write event on
// an accepted, non-directory file.
func (s *Source) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !s.accepts(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
