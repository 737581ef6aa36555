// Package query turns untrusted list parameters (filter, sort, fields, page,
// limit) into a tenant-scoped specification the todo repository can render
// into SQL. Operators and columns are allow-listed; client strings never
// reach SQL text, only bind arguments.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"todoapi/internal/domain"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500

	ownerColumn = "owner_id"
)

// reservedKeys are consumed by the builder itself and never become
// predicates.
var reservedKeys = map[string]bool{
	"sort":   true,
	"page":   true,
	"limit":  true,
	"fields": true,
}

// filterColumns maps accepted parameter names to real columns. Anything not
// in this map cannot be filtered or sorted on. The camelCase aliases keep
// clients of the previous API working.
var filterColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"completed":   "completed",
	"priority":    "priority",
	"created_at":  "created_at",
	"createdAt":   "created_at",
}

// ownerAliases are client spellings of the tenant key. They are dropped on
// sight: the owner predicate comes from the resolved principal, never from
// the request.
var ownerAliases = map[string]bool{
	"owner_id": true,
	"ownerId":  true,
	"user_id":  true,
	"userId":   true,
}

var operators = map[string]string{
	"":    "=",
	"eq":  "=",
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// publicColumns is the default projection; owner_id stays internal.
var publicColumns = []string{"id", "title", "description", "completed", "priority", "created_at", "updated_at"}

type Predicate struct {
	Column string
	Op     string
	Value  any
}

type SortKey struct {
	Column string
	Desc   bool
}

// Spec is the per-request query specification. The owner predicate is always
// present and always first.
type Spec struct {
	Preds  []Predicate
	Sort   []SortKey
	Fields []string

	Page          int
	Limit         int
	Offset        int
	PageRequested bool
}

// Build derives a Spec from raw query parameters and the caller's tenant
// key. Every returned error is a domain.QueryError (client input fault).
func Build(raw url.Values, ownerID int64) (Spec, error) {
	spec := Spec{
		Preds: []Predicate{{Column: ownerColumn, Op: "=", Value: ownerID}},
	}

	for key, values := range raw {
		if reservedKeys[key] {
			continue
		}
		name, op, err := splitKey(key)
		if err != nil {
			return Spec{}, err
		}
		if ownerAliases[name] {
			// Tenant key comes from the principal; client values ignored.
			continue
		}
		column, ok := filterColumns[name]
		if !ok {
			return Spec{}, domain.QueryError{Msg: fmt.Sprintf("cannot filter by %q", name)}
		}
		sqlOp, ok := operators[op]
		if !ok {
			return Spec{}, domain.QueryError{Msg: fmt.Sprintf("unsupported filter operator %q", op)}
		}
		for _, value := range values {
			converted, err := convertValue(column, value)
			if err != nil {
				return Spec{}, err
			}
			spec.Preds = append(spec.Preds, Predicate{Column: column, Op: sqlOp, Value: converted})
		}
	}

	sort, err := parseSort(raw.Get("sort"))
	if err != nil {
		return Spec{}, err
	}
	spec.Sort = sort

	fields, err := parseFields(raw.Get("fields"))
	if err != nil {
		return Spec{}, err
	}
	spec.Fields = fields

	spec.Page, spec.PageRequested = parsePositive(raw.Get("page"), 1)
	spec.Limit, _ = parsePositive(raw.Get("limit"), DefaultLimit)
	if spec.Limit > MaxLimit {
		spec.Limit = MaxLimit
	}
	spec.Offset = (spec.Page - 1) * spec.Limit

	return spec, nil
}

// WhereSQL renders the predicate set as a WHERE fragment with bind args.
func (s Spec) WhereSQL() (string, []any) {
	parts := make([]string, 0, len(s.Preds))
	args := make([]any, 0, len(s.Preds))
	for _, p := range s.Preds {
		parts = append(parts, p.Column+" "+p.Op+" ?")
		args = append(args, p.Value)
	}
	return strings.Join(parts, " AND "), args
}

// OrderSQL renders the sort keys, defaulting to newest first.
func (s Spec) OrderSQL() string {
	if len(s.Sort) == 0 {
		return "created_at DESC, id DESC"
	}
	parts := make([]string, 0, len(s.Sort))
	for _, k := range s.Sort {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, k.Column+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// Columns is the projected column list; id is always included.
func (s Spec) Columns() []string {
	if len(s.Fields) == 0 {
		return publicColumns
	}
	return s.Fields
}

// splitKey understands "field" and "field[op]" keys.
func splitKey(key string) (name, op string, err error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, "", nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", domain.QueryError{Msg: fmt.Sprintf("malformed filter key %q", key)}
	}
	return key[:open], key[open+1 : len(key)-1], nil
}

func convertValue(column, value string) (any, error) {
	switch column {
	case "completed":
		switch value {
		case "true", "1":
			return 1, nil
		case "false", "0":
			return 0, nil
		}
		return nil, domain.QueryError{Msg: fmt.Sprintf("completed must be boolean, got %q", value)}
	case "priority":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, domain.QueryError{Msg: fmt.Sprintf("priority must be numeric, got %q", value), Err: err}
		}
		return n, nil
	default:
		return value, nil
	}
}

func parseSort(raw string) ([]SortKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	keys := []SortKey{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		column, ok := filterColumns[name]
		if !ok {
			return nil, domain.QueryError{Msg: fmt.Sprintf("cannot sort by %q", name)}
		}
		keys = append(keys, SortKey{Column: column, Desc: desc})
	}
	return keys, nil
}

func parseFields(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	fields := []string{"id"}
	seen := map[string]bool{"id": true}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		column, ok := filterColumns[part]
		if !ok && part != "updated_at" && part != "updatedAt" && part != "id" {
			return nil, domain.QueryError{Msg: fmt.Sprintf("unknown field %q", part)}
		}
		if part == "updated_at" || part == "updatedAt" {
			column = "updated_at"
		}
		if part == "id" {
			column = "id"
		}
		if !seen[column] {
			seen[column] = true
			fields = append(fields, column)
		}
	}
	return fields, nil
}

// parsePositive parses a positive integer, falling back silently: missing or
// unusable pagination values default instead of failing.
func parsePositive(raw string, fallback int) (value int, present bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback, true
	}
	return n, true
}
