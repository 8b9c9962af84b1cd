package dynamicplaylist

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filter is the declarative selection predicate of a definition. Exactly
// one of All, Any or a Field/Op leaf must be set. Filters compile to
// parameterized SQL fragments; definition files are server-controlled, but
// values are still bound as arguments, never spliced into the query text.
type Filter struct {
	All []Filter `json:"all,omitempty"`
	Any []Filter `json:"any,omitempty"`

	Field string `json:"field,omitempty"`
	Op    string `json:"op,omitempty"`
	Value any    `json:"value,omitempty"`
}

// songFields maps definition field names to song table columns. Anything
// not listed here is rejected at parse time.
var songFields = map[string]string{
	"title":      "title",
	"artist":     "artist",
	"album":      "album",
	"genre":      "genre",
	"year":       "year",
	"duration":   "duration",
	"bitrate":    "bitrate",
	"playCount":  "playcount",
	"lastPlayed": "lastplayed",
	"created":    "created",
}

var comparisonOps = map[string]string{
	"eq":  "=",
	"ne":  "!=",
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
}

// Compile renders the filter as a WHERE fragment plus bind arguments.
// requester is substituted into the listener-scoped operators isStarred
// and minRating.
func (f Filter) Compile(requester uuid.UUID) (string, []any, error) {
	switch {
	case len(f.All) > 0:
		return f.compileGroup(f.All, " AND ", requester)
	case len(f.Any) > 0:
		return f.compileGroup(f.Any, " OR ", requester)
	}
	return f.compileLeaf(requester)
}

func (f Filter) compileGroup(group []Filter, joiner string, requester uuid.UUID) (string, []any, error) {
	var clauses []string
	var args []any
	for _, sub := range group {
		clause, subArgs, err := sub.Compile(requester)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, subArgs...)
	}
	return "(" + strings.Join(clauses, joiner) + ")", args, nil
}

func (f Filter) compileLeaf(requester uuid.UUID) (string, []any, error) {
	switch f.Op {
	case "isStarred":
		return `EXISTS (SELECT 1 FROM annotations
			WHERE annotations.userid = ? AND annotations.itemid = songs.id
			AND annotations.starred > ?)`, []any{requester, time.Time{}}, nil
	case "minRating":
		rating, ok := numericValue(f.Value)
		if !ok {
			return "", nil, fmt.Errorf("op minRating needs a numeric value")
		}
		return `EXISTS (SELECT 1 FROM annotations
			WHERE annotations.userid = ? AND annotations.itemid = songs.id
			AND annotations.rating >= ?)`, []any{requester, rating}, nil
	}

	column, ok := songFields[f.Field]
	if !ok {
		return "", nil, fmt.Errorf("unknown field %q", f.Field)
	}

	switch f.Op {
	case "contains":
		text, ok := f.Value.(string)
		if !ok {
			return "", nil, fmt.Errorf("op contains needs a string value")
		}
		return column + ` LIKE ?`, []any{"%" + text + "%"}, nil
	case "withinDays":
		days, ok := numericValue(f.Value)
		if !ok {
			return "", nil, fmt.Errorf("op withinDays needs a numeric value")
		}
		return column + ` >= datetime('now', ?)`, []any{fmt.Sprintf("-%d days", int(days))}, nil
	}

	operator, ok := comparisonOps[f.Op]
	if !ok {
		return "", nil, fmt.Errorf("unknown op %q", f.Op)
	}
	return column + " " + operator + " ?", []any{f.Value}, nil
}

// numericValue accepts the number representations JSON decoding produces.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// compileOrderBy validates a definition sort expression like
// "playCount desc" against the field whitelist. Empty means random order.
// A song id tiebreak keeps non-random listings deterministic.
func compileOrderBy(expr string) (string, error) {
	if expr == "" || strings.EqualFold(expr, "random") {
		return "RANDOM()", nil
	}
	parts := strings.Fields(expr)
	if len(parts) == 0 {
		return "", fmt.Errorf("blank sort expression %q", expr)
	}
	column, ok := songFields[parts[0]]
	if !ok {
		return "", fmt.Errorf("unknown sort field %q", parts[0])
	}
	direction := ""
	if len(parts) > 1 {
		switch strings.ToLower(parts[1]) {
		case "asc":
		case "desc":
			direction = " DESC"
		default:
			return "", fmt.Errorf("unknown sort direction %q", parts[1])
		}
	}
	if len(parts) > 2 {
		return "", fmt.Errorf("malformed sort expression %q", expr)
	}
	return column + direction + ", id", nil
}
