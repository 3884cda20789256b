package tablediff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/utils"
)

type (
	// ParsedTable is the structure read back out of a stored CREATE TABLE
	// definition. Only the attributes the planner tracks are parsed;
	// unique and foreign key constraints in the definition are accepted
	// but not modeled.
	ParsedTable struct {
		Schema     string
		Name       string
		Columns    []Column
		PrimaryKey *PrimaryKey
		Checks     []CheckConstraint
		Indexes    []FileIndex
	}

	// FileIndex is a CREATE INDEX statement found after the table batch,
	// kept verbatim for idempotent recreation together with the parsed
	// name and ON target for the paired DROP INDEX.
	FileIndex struct {
		Name      string
		OnSchema  string
		OnTable   string
		Statement string
	}
)

var (
	reLineComment = regexp.MustCompile(`--[^\n]*`)
	reCreateTable = regexp.MustCompile(`(?i)create\s+table\s+(\[[^\]]+\]|[\w#]+)(?:\s*\.\s*(\[[^\]]+\]|[\w#]+))?`)
	reColumnName  = regexp.MustCompile(`^\s*(\[[^\]]+\]|\w+)`)
	reColumnType  = regexp.MustCompile(`^\s*([a-zA-Z_]\w*)\s*(\([^)]*\))?`)
	reIdentity    = regexp.MustCompile(`(?i)\bidentity\b(?:\s*\(\s*(\d+)\s*,\s*(\d+)\s*\))?`)
	reNotNull     = regexp.MustCompile(`(?i)\bnot\s+null\b`)
	reDefaultKw   = regexp.MustCompile(`(?i)\bdefault\b`)
	reConstraint  = regexp.MustCompile(`(?is)^constraint\s+(\[[^\]]+\]|\w+)\s+(.+)$`)
	rePrimaryKey  = regexp.MustCompile(`(?is)^primary\s+key(?:\s+(clustered|nonclustered))?\s*\(([^)]*)\)`)
	reCheckKw     = regexp.MustCompile(`(?is)^check\s*\(`)
	reCreateIndex = regexp.MustCompile(`(?i)^create\s+(?:unique\s+)?(?:clustered\s+|nonclustered\s+)?index\s+(\[[^\]]+\]|\w+)\s+on\s+(\[[^\]]+\]|\w+)(?:\s*\.\s*(\[[^\]]+\]|\w+))?`)
)

// ParseCreateTable reads a stored CREATE TABLE definition back into its
// columns, primary key, check constraints, and trailing CREATE INDEX
// statements. The definition is expected to be in the canonical form the
// emitter in this package produces; parsing is regex and bracket-scan
// based, not a SQL parser.
func ParseCreateTable(definition string) (*ParsedTable, error) {
	clean := reLineComment.ReplaceAllString(definition, "")
	batches := utils.SplitBatches(clean)
	if len(batches) == 0 {
		return nil, errors.New("definition contains no statements")
	}

	table, err := parseTableBatch(batches[0])
	if err != nil {
		return nil, err
	}

	for _, batch := range batches[1:] {
		idx, ok := parseIndexStatement(batch)
		if ok {
			table.Indexes = append(table.Indexes, idx)
		}
	}

	return table, nil
}

func parseTableBatch(batch string) (*ParsedTable, error) {
	loc := reCreateTable.FindStringSubmatchIndex(batch)
	if loc == nil {
		return nil, errors.New("no CREATE TABLE statement found")
	}

	groups := reCreateTable.FindStringSubmatch(batch)
	table := &ParsedTable{}
	if groups[2] != "" {
		table.Schema = utils.StripBrackets(groups[1])
		table.Name = utils.StripBrackets(groups[2])
	} else {
		table.Name = utils.StripBrackets(groups[1])
	}

	open := strings.Index(batch[loc[1]:], "(")
	if open < 0 {
		return nil, errors.New("CREATE TABLE has no column block")
	}
	open += loc[1]

	closing, ok := matchParen(batch, open)
	if !ok {
		return nil, errors.New("unbalanced parentheses in CREATE TABLE")
	}

	for _, item := range splitTopLevel(batch[open+1:closing], ',') {
		if m := reConstraint.FindStringSubmatch(item); m != nil {
			parseConstraintItem(table, utils.StripBrackets(m[1]), strings.TrimSpace(m[2]))
			continue
		}

		// An unnamed table-level primary key is legal; the planner
		// synthesizes a constraint name for it later.
		if m := rePrimaryKey.FindStringSubmatch(item); m != nil {
			table.PrimaryKey = &PrimaryKey{
				Clustered: !strings.EqualFold(m[1], "nonclustered"),
				Columns:   splitColumnList(m[2]),
			}
			continue
		}

		col, err := parseColumnItem(item)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse column %q", item)
		}
		table.Columns = append(table.Columns, col)
	}

	return table, nil
}

// parseConstraintItem records primary key and check constraints; other
// constraint kinds in the definition are not tracked by the planner.
func parseConstraintItem(table *ParsedTable, name, body string) {
	if m := rePrimaryKey.FindStringSubmatch(body); m != nil {
		table.PrimaryKey = &PrimaryKey{
			Name:      name,
			Clustered: !strings.EqualFold(m[1], "nonclustered"),
			Columns:   splitColumnList(m[2]),
		}
		return
	}

	if loc := reCheckKw.FindStringIndex(body); loc != nil {
		open := strings.Index(body, "(")
		if closing, ok := matchParen(body, open); ok {
			table.Checks = append(table.Checks, CheckConstraint{
				Name:       name,
				Definition: body[open : closing+1],
			})
		}
	}
}

func parseColumnItem(item string) (Column, error) {
	nameMatch := reColumnName.FindStringSubmatch(item)
	if nameMatch == nil {
		return Column{}, errors.New("missing column name")
	}

	rest := item[len(nameMatch[0]):]
	typeMatch := reColumnType.FindStringSubmatch(rest)
	if typeMatch == nil || typeMatch[1] == "" {
		return Column{}, errors.New("missing column type")
	}

	col := Column{
		Name:    utils.StripBrackets(nameMatch[1]),
		TypeSQL: typeMatch[1] + strings.ReplaceAll(typeMatch[2], " ", ""),
	}

	tail := rest[len(typeMatch[0]):]

	// Everything after DEFAULT is the default expression; flags precede it.
	flags := tail
	if loc := reDefaultKw.FindStringIndex(tail); loc != nil {
		flags = tail[:loc[0]]
		expr := strings.TrimSpace(tail[loc[1]:])
		col.Default = &expr
	}

	if m := reIdentity.FindStringSubmatch(flags); m != nil {
		col.Identity = &Identity{Seed: 1, Increment: 1}
		if m[1] != "" {
			col.Identity.Seed, _ = strconv.ParseInt(m[1], 10, 64)
			col.Identity.Increment, _ = strconv.ParseInt(m[2], 10, 64)
		}
	}

	col.Nullable = !reNotNull.MatchString(flags)

	return col, nil
}

func parseIndexStatement(batch string) (FileIndex, bool) {
	m := reCreateIndex.FindStringSubmatch(batch)
	if m == nil {
		return FileIndex{}, false
	}

	stmt := strings.TrimSpace(batch)
	if !strings.HasSuffix(stmt, ";") {
		stmt += ";"
	}

	idx := FileIndex{Name: utils.StripBrackets(m[1]), Statement: stmt}
	if m[3] != "" {
		idx.OnSchema = utils.StripBrackets(m[2])
		idx.OnTable = utils.StripBrackets(m[3])
	} else {
		idx.OnTable = utils.StripBrackets(m[2])
	}

	return idx, true
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// parentheses so that "decimal(10,2)" survives as one piece.
func splitTopLevel(s string, sep rune) []string {
	var parts []string

	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchParen returns the index of the parenthesis closing the one at open.
func matchParen(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func splitColumnList(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		c = utils.StripBrackets(strings.TrimSpace(c))
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
