package catalog

import (
	"fmt"
	"strings"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

// Filter narrows a catalog search. Query is a case-insensitive
// substring match against artist OR album OR category; Artist and Album
// are independent substring matches; Format and Category match exactly.
// All supplied fields combine with AND.
type Filter struct {
	Query    string
	Artist   string
	Album    string
	Format   domain.RecordFormat
	Category domain.RecordCategory
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// whereClause renders the filter as a SQL WHERE clause with positional
// placeholders, or an empty string when nothing is filtered.
func (f Filter) whereClause() (string, []any) {
	var clauses []string
	var args []any

	placeholder := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		p := placeholder(likePattern(f.Query))
		clauses = append(clauses, fmt.Sprintf("(artist ILIKE %s OR album ILIKE %s OR category ILIKE %s)", p, p, p))
	}
	if f.Artist != "" {
		clauses = append(clauses, "artist ILIKE "+placeholder(likePattern(f.Artist)))
	}
	if f.Album != "" {
		clauses = append(clauses, "album ILIKE "+placeholder(likePattern(f.Album)))
	}
	if f.Format != "" {
		clauses = append(clauses, "format = "+placeholder(string(f.Format)))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = "+placeholder(string(f.Category)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps user input for a substring ILIKE match, escaping
// LIKE metacharacters so they match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
