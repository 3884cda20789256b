package ignore

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Matcher holds a set of glob patterns and decides whether repository
// paths take part in synchronization.
type Matcher struct {
	patterns []string
}

// New creates a Matcher from the given patterns. Patterns are validated
// up front so that matching never fails later.
func New(patterns ...string) (*Matcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
	}
	return &Matcher{patterns: patterns}, nil
}

// Load reads patterns from r, one per line. Blank lines and #-prefixed
// comment lines are skipped.
func Load(r io.Reader) (*Matcher, error) {
	var patterns []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ignore patterns")
	}

	return New(patterns...)
}

// LoadFile reads patterns from the file at path. A missing file yields an
// empty matcher that processes everything.
func LoadFile(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Matcher{}, nil
		}
		return nil, errors.Wrapf(err, "failed to open ignore file %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// ShouldProcess returns true iff no configured pattern matches path.
func (m *Matcher) ShouldProcess(path string) bool {
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return false
		}
	}
	return true
}

// Patterns returns the configured patterns in load order.
func (m *Matcher) Patterns() []string {
	return m.patterns
}
