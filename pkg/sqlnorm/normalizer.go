package sqlnorm

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pseudomuto/schemakeeper/pkg/consts"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reBracketed  = regexp.MustCompile(`\[(\w+)\]`)
	reBatchSep   = regexp.MustCompile(`\bgo\b`)
)

// Normalizer converts SQL text into a canonical form used for equivalence
// checks. Safe for concurrent use.
type Normalizer struct {
	defaultSchema  string
	reModuleHeader *regexp.Regexp
	reSchemaRef    *regexp.Regexp

	mu    sync.RWMutex
	cache map[string]string
}

// New creates a Normalizer that treats defaultSchema as implicit: both
// "create procedure dbo.p" and "create procedure p" canonicalize to the
// same form when defaultSchema is "dbo". An empty defaultSchema falls back
// to consts.DefaultSchemaName.
func New(defaultSchema string) *Normalizer {
	if defaultSchema == "" {
		defaultSchema = consts.DefaultSchemaName
	}
	ds := regexp.QuoteMeta(strings.ToLower(defaultSchema))

	return &Normalizer{
		defaultSchema:  defaultSchema,
		reModuleHeader: regexp.MustCompile(`\b(create|alter) (procedure|function|view|trigger) ` + ds + `\.`),
		reSchemaRef:    regexp.MustCompile(`\b` + ds + `\.`),
		cache:          make(map[string]string),
	}
}

// Normalize returns the canonical form of sql, or nil when sql is nil.
func (n *Normalizer) Normalize(sql *string) *string {
	if sql == nil {
		return nil
	}

	if v, ok := n.lookup(*sql); ok {
		return &v
	}

	v := n.normalize(*sql)
	n.store(*sql, v)
	return &v
}

// Equivalent reports whether a and b canonicalize to the same form. Two
// nil inputs are equivalent; a nil and a non-nil input are not.
func (n *Normalizer) Equivalent(a, b *string) bool {
	na, nb := n.Normalize(a), n.Normalize(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	return *na == *nb
}

func (n *Normalizer) normalize(sql string) string {
	s := stripComments(sql)
	s = strings.ToLower(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ";", "")
	s = reBracketed.ReplaceAllString(s, "$1")

	batch := firstCreateBatch(s)
	if batch == "" {
		return ""
	}

	batch = rewriteCreateOrAlter(batch)
	batch = n.reModuleHeader.ReplaceAllString(batch, "$1 $2 ")
	batch = n.reSchemaRef.ReplaceAllString(batch, "")

	return strings.TrimSpace(batch)
}

// firstCreateBatch splits s on GO separators and returns the first batch
// containing "create", trimmed. SET option headers and permission grants
// live in their own batches and fall away here.
func firstCreateBatch(s string) string {
	for _, b := range reBatchSep.Split(s, -1) {
		b = strings.TrimSpace(b)
		if strings.Contains(b, "create") {
			return b
		}
	}
	return ""
}

// rewriteCreateOrAlter folds "create or alter" into "create" at the
// position of the first create keyword.
func rewriteCreateOrAlter(batch string) string {
	const orAlter = "create or alter"

	idx := strings.Index(batch, "create")
	if idx < 0 || !strings.HasPrefix(batch[idx:], orAlter) {
		return batch
	}
	return batch[:idx] + "create" + batch[idx+len(orAlter):]
}

// stripComments removes -- line comments and /* */ block comment runs,
// replacing each run with a single space. Block comments nest, matching
// SQL Server. A -- inside an open block comment does not start a new
// comment.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	depth := 0
	for i := 0; i < len(s); {
		if depth > 0 {
			switch {
			case strings.HasPrefix(s[i:], "*/"):
				depth--
				i += 2
				if depth == 0 {
					b.WriteByte(' ')
				}
			case strings.HasPrefix(s[i:], "/*"):
				depth++
				i += 2
			default:
				i++
			}
			continue
		}

		switch {
		case strings.HasPrefix(s[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(s[i:], "--"):
			for i < len(s) && s[i] != '\n' {
				i++
			}
		default:
			b.WriteByte(s[i])
			i++
		}
	}

	return b.String()
}

func (n *Normalizer) lookup(raw string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	v, ok := n.cache[raw]
	return v, ok
}

func (n *Normalizer) store(raw, normalized string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.cache[raw] = normalized
}
