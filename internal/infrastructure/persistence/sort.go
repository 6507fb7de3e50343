package persistence

import "strings"

// sortColumns whitelists the columns a listing may be ordered by
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

// column returns name when it is whitelisted, otherwise the fallback column.
// Matching is exact and case sensitive.
func (s sortColumns) column(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := s.allowed[name]; ok {
		return name
	}
	return s.fallback
}

// clause builds an ORDER BY clause from request input. Anything other than
// "asc" sorts descending.
func (s sortColumns) clause(column, dir string) string {
	return s.column(column) + " " + sortDirection(dir)
}

func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

var templateSortColumns = newSortColumns("created_at",
	"updated_at", "name", "document_type", "status", "is_default", "paper_size")
