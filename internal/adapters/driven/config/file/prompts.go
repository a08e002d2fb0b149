package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves LLM prompt templates from <dir>/<name>.txt, seeding the
// directory with the built-in templates on first use. Loaded templates are
// cached until Reload.
type PromptStore struct {
	promptDir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// defaultPrompts seed the prompts directory and stand in for missing files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSummarise: `Summarise the following content in %d words or less.
Be concise and capture the key points.

Content:
%s

Summary:`,

	driven.PromptAnswerSystem: `You are a knowledgeable assistant answering questions about a collection of video transcripts.

Rules:
1. Answer only from the transcript passages provided with the question. You may use general knowledge to make the answer coherent, never to add facts.
2. If the passages do not answer the question, say that you cannot answer it from the videos.
3. Cite the source filename of every passage you use, e.g. (source: intro_to_sql.md).
4. Keep answers concise: at most six sentences, practical and to the point.`,

	driven.PromptVideoSummary: `You write YouTube video descriptions.
Describe the following video in 1-3 engaging, informative sentences.
Return ONLY the description.

Video title: %s

Transcript:
%s`,

	driven.PromptVideoKeywords: `You write YouTube video tags.
Extract 20-40 relevant keywords or short phrases for the following video, covering main topics, technologies, concepts and use cases.
Return ONLY a comma-separated, lowercase list, e.g.: python, data engineering, api tutorial, rest api

Video title: %s

Transcript:
%s`,
}

// NewPromptStore returns a store rooted at promptDir, or ~/.ragtube/prompts
// when empty. Nothing touches the disk until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, DefaultDirName, "prompts")
	}
	return &PromptStore{promptDir: promptDir, cache: make(map[string]string)}, nil
}

// Load returns the template called name. A missing or unreadable file falls
// back to the built-in template; names with neither are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	builtin, known := defaultPrompts[name]
	if s.seedErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.seedErr)
	}

	s.mu.RLock()
	cached, hit := s.cache[name]
	s.mu.RUnlock()
	if hit {
		return cached, nil
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	prompt := strings.TrimSpace(string(data))

	s.mu.Lock()
	defer s.mu.Unlock()
	if winner, ok := s.cache[name]; ok {
		return winner, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so edits on disk are seen.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompts directory.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

// seed creates the directory and writes any built-in template or README
// that is not already present. Existing files are left alone.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(s.path(name), content); err != nil {
			return fmt.Errorf("create default prompt %q: %w", name, err)
		}
	}
	return writeIfMissing(filepath.Join(s.promptDir, "README.md"), promptsReadme)
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

const promptsReadme = `# ragtube prompts

Edit these files to change how ragtube talks to the configured LLM.
Changes take effect on the next command.

- ` + "`answer_system.txt`" + ` - system prompt for ` + "`ragtube ask`" + ` and the MCP query tool
- ` + "`video_summary.txt`" + ` - video description written at ingestion (title, transcript)
- ` + "`video_keywords.txt`" + ` - video tags written at ingestion (title, transcript)
- ` + "`summarise.txt`" + ` - generic summary (max words, content)

Placeholders are Go fmt verbs (` + "`%s`" + `, ` + "`%d`" + `) and must stay in order.
Delete a file to restore its default.
`
