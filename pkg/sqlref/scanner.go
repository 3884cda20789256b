package sqlref

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pseudomuto/schemakeeper/pkg/consts"
)

// tsqlLexer tokenizes T-SQL. Strings escape quotes by doubling, block
// comments do not nest at this layer, and the Other rule keeps exotic
// characters from failing the lex.
var tsqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\r\n]*`},
	{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
	{Name: "String", Pattern: `'([^']|'')*'`},
	{Name: "BracketIdent", Pattern: `\[[^\]]*\]`},
	{Name: "QuotedIdent", Pattern: `"[^"]*"`},
	{Name: "Number", Pattern: `\d+(\.\d*)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_@#][a-zA-Z0-9_@#$]*`},
	{Name: "Punct", Pattern: `[(),.;=+\-*/%<>!&|^~:]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

type (
	// Ref names a referenced object. Schema and Name are lowercase with
	// quoting stripped; unqualified references carry the default schema.
	Ref struct {
		Schema string
		Name   string
	}

	// Scanner extracts object references from T-SQL text.
	Scanner struct {
		defaultSchema string
		symbols       map[string]lexer.TokenType
	}
)

// NewScanner creates a Scanner that attributes unqualified references to
// defaultSchema (consts.DefaultSchemaName when empty).
func NewScanner(defaultSchema string) *Scanner {
	if defaultSchema == "" {
		defaultSchema = consts.DefaultSchemaName
	}
	return &Scanner{
		defaultSchema: strings.ToLower(defaultSchema),
		symbols:       tsqlLexer.Symbols(),
	}
}

// TableRefs returns the targets of REFERENCES clauses in sql, in first-seen
// order without duplicates.
func (s *Scanner) TableRefs(sql string) []Ref {
	return s.scan(sql, "REFERENCES")
}

// ObjectRefs returns the objects named after FROM and JOIN keywords in sql,
// in first-seen order without duplicates.
func (s *Scanner) ObjectRefs(sql string) []Ref {
	return s.scan(sql, "FROM", "JOIN")
}

func (s *Scanner) scan(sql string, keywords ...string) []Ref {
	kw := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		kw[k] = true
	}

	toks := s.tokens(sql)

	var refs []Ref
	seen := make(map[Ref]bool)

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Type != s.symbols["Ident"] || !kw[strings.ToUpper(t.Value)] {
			continue
		}

		parts, next := s.qualifiedName(toks, i+1)
		if len(parts) == 0 {
			continue
		}

		ref := s.toRef(parts)
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
		i = next - 1
	}

	return refs
}

// qualifiedName reads a dotted identifier sequence starting at i and
// returns its parts plus the index of the first unconsumed token.
func (s *Scanner) qualifiedName(toks []lexer.Token, i int) ([]string, int) {
	if i >= len(toks) || !s.isNamePart(toks[i]) {
		return nil, i
	}

	parts := []string{s.partValue(toks[i])}
	i++

	for i+1 < len(toks) && toks[i].Type == s.symbols["Punct"] && toks[i].Value == "." && s.isNamePart(toks[i+1]) {
		parts = append(parts, s.partValue(toks[i+1]))
		i += 2
	}

	return parts, i
}

// toRef keeps the trailing schema.name of a possibly longer qualified name.
func (s *Scanner) toRef(parts []string) Ref {
	name := strings.ToLower(parts[len(parts)-1])
	if len(parts) == 1 {
		return Ref{Schema: s.defaultSchema, Name: name}
	}
	return Ref{Schema: strings.ToLower(parts[len(parts)-2]), Name: name}
}

func (s *Scanner) isNamePart(t lexer.Token) bool {
	switch t.Type {
	case s.symbols["Ident"], s.symbols["BracketIdent"], s.symbols["QuotedIdent"]:
		return true
	default:
		return false
	}
}

func (s *Scanner) partValue(t lexer.Token) string {
	switch t.Type {
	case s.symbols["BracketIdent"]:
		return strings.TrimSuffix(strings.TrimPrefix(t.Value, "["), "]")
	case s.symbols["QuotedIdent"]:
		return strings.Trim(t.Value, `"`)
	default:
		return t.Value
	}
}

// tokens lexes sql and drops whitespace and comments. Strings and numbers
// stay in the stream as barriers so that a literal after FROM never reads
// as an object name.
func (s *Scanner) tokens(sql string) []lexer.Token {
	lx, err := tsqlLexer.LexString("", sql)
	if err != nil {
		return nil
	}

	var out []lexer.Token
	for {
		t, err := lx.Next()
		if err != nil || t.EOF() {
			return out
		}

		switch t.Type {
		case s.symbols["Whitespace"], s.symbols["Comment"], s.symbols["MultilineComment"]:
			continue
		default:
			out = append(out, t)
		}
	}
}
