package token

import "strings"

// keywords maps the upper-cased literal to its token type. Lookup is
// case-insensitive per spec.md §4.1 ("all case-insensitive").
var keywords = map[string]Type{
	"SELECT":     SELECT,
	"FROM":       FROM,
	"JOIN":       JOIN,
	"INNER":      INNER,
	"LEFT":       LEFT,
	"RIGHT":      RIGHT,
	"FULL":       FULL,
	"CROSS":      CROSS,
	"OUTER":      OUTER,
	"ON":         ON,
	"AS":         AS,
	"WHERE":      WHERE,
	"GROUP":      GROUP,
	"BY":         BY,
	"HAVING":     HAVING,
	"ORDER":      ORDER,
	"LIMIT":      LIMIT,
	"OFFSET":     OFFSET,
	"DISTINCT":   DISTINCT,
	"AND":        AND,
	"OR":         OR,
	"NOT":        NOT,
	"NULL":       NULL,
	"UNION":      UNION,
	"INTERSECT":  INTERSECT,
	"EXCEPT":     EXCEPT,
	"ALL":        ALL,
	"WITH":       WITH,
	"CREATE":     CREATE,
	"KAFKA":      KAFKA,
	"CONNECTOR":  CONNECTOR,
	"KIND":       KIND,
	"USING":      USING,
	"CLUSTER":    CLUSTER,
	"VERSION":    CONNECTOR_VERSION,
	"PIPELINES":  PIPELINES,
	"SOURCE":     SOURCE,
	"DATABASE":   DATABASE,
	"WAREHOUSE":  WAREHOUSE,
	"INTO":       INTO,
	"SCHEMA":     SCHEMA,
	"SIMPLE":     SIMPLE,
	"MESSAGE":    MESSAGE,
	"TRANSFORM":  TRANSFORM,
	"PIPELINE":   PIPELINE,
	"PREDICATE":  PREDICATE,
	"PRESET":     PRESET,
	"EXTEND":     EXTEND,
	"NEGATE":     NEGATE,
	"IF":         IF,
	"EXISTS":     EXISTS,
	"PATTERN":    PATTERN,
}

// LookupIdent returns the keyword token type for ident, or IDENT if it is
// not a reserved word.
func LookupIdent(ident string) Type {
	if t, ok := keywords[strings.ToUpper(ident)]; ok {
		return t
	}
	return IDENT
}

// IsMacroName reports whether ident names a recognized macro function
// (ref/source), matched case-sensitively per spec.md's grammar examples.
func IsMacroName(ident string) bool {
	return ident == "ref" || ident == "source"
}
