package query

import (
	"fmt"
	"sort"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType string

const (
	QueryTypeSelect QueryType = "SELECT"
	QueryTypeInsert QueryType = "INSERT"
	QueryTypeUpdate QueryType = "UPDATE"
	QueryTypeDelete QueryType = "DELETE"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []interface{}
}

// Builder is a fluent SQL query builder for the fixed system tables
type Builder struct {
	queryType    QueryType
	table        string
	fields       []string
	whereClauses []string
	params       []interface{}
	orderBy      string
	limit        *int
	values       map[string]interface{}
}

// From creates a new SELECT query builder
func From(table string) *Builder {
	return &Builder{
		queryType:    QueryTypeSelect,
		table:        table,
		fields:       make([]string, 0),
		whereClauses: make([]string, 0),
		params:       make([]interface{}, 0),
	}
}

// Insert creates a new INSERT query builder
func Insert(table string, values map[string]interface{}) *Builder {
	return &Builder{
		queryType: QueryTypeInsert,
		table:     table,
		values:    values,
	}
}

// Update creates a new UPDATE query builder
func Update(table string) *Builder {
	return &Builder{
		queryType:    QueryTypeUpdate,
		table:        table,
		whereClauses: make([]string, 0),
		params:       make([]interface{}, 0),
	}
}

// Delete creates a new DELETE query builder
func Delete(table string) *Builder {
	return &Builder{
		queryType:    QueryTypeDelete,
		table:        table,
		whereClauses: make([]string, 0),
		params:       make([]interface{}, 0),
	}
}

// Select sets the fields to select
func (b *Builder) Select(fields []string) *Builder {
	b.fields = fields
	return b
}

// Set sets the values for an UPDATE query
func (b *Builder) Set(values map[string]interface{}) *Builder {
	b.values = values
	return b
}

// Where adds a WHERE condition (ANDed with previous conditions)
func (b *Builder) Where(condition string, args ...interface{}) *Builder {
	b.whereClauses = append(b.whereClauses, condition)
	b.params = append(b.params, args...)
	return b
}

// OrderBy sets the ORDER BY clause
func (b *Builder) OrderBy(field string, direction string) *Builder {
	b.orderBy = fmt.Sprintf("%s %s", field, direction)
	return b
}

// Limit sets the LIMIT clause
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Build assembles the final SQL and parameter list
func (b *Builder) Build() QueryResult {
	switch b.queryType {
	case QueryTypeInsert:
		return b.buildInsert()
	case QueryTypeUpdate:
		return b.buildUpdate()
	case QueryTypeDelete:
		return b.buildDelete()
	default:
		return b.buildSelect()
	}
}

func (b *Builder) buildSelect() QueryResult {
	fields := "*"
	if len(b.fields) > 0 {
		fields = strings.Join(b.fields, ", ")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s", fields, b.table))
	b.appendWhere(&sb)

	if b.orderBy != "" {
		sb.WriteString(" ORDER BY " + b.orderBy)
	}
	if b.limit != nil {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", *b.limit))
	}

	return QueryResult{SQL: sb.String(), Params: b.params}
}

func (b *Builder) buildInsert() QueryResult {
	columns := sortedKeys(b.values)

	placeholders := make([]string, len(columns))
	params := make([]interface{}, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		params[i] = b.values[col]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	return QueryResult{SQL: sql, Params: params}
}

func (b *Builder) buildUpdate() QueryResult {
	columns := sortedKeys(b.values)

	sets := make([]string, len(columns))
	params := make([]interface{}, 0, len(columns)+len(b.params))
	for i, col := range columns {
		sets[i] = col + " = ?"
		params = append(params, b.values[col])
	}
	params = append(params, b.params...)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("UPDATE %s SET %s", b.table, strings.Join(sets, ", ")))
	if len(b.whereClauses) > 0 {
		sb.WriteString(" WHERE " + strings.Join(b.whereClauses, " AND "))
	}

	return QueryResult{SQL: sb.String(), Params: params}
}

func (b *Builder) buildDelete() QueryResult {
	var sb strings.Builder
	sb.WriteString("DELETE FROM " + b.table)
	b.appendWhere(&sb)
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY " + b.orderBy)
	}
	if b.limit != nil {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", *b.limit))
	}
	return QueryResult{SQL: sb.String(), Params: b.params}
}

func (b *Builder) appendWhere(sb *strings.Builder) {
	if len(b.whereClauses) > 0 {
		sb.WriteString(" WHERE " + strings.Join(b.whereClauses, " AND "))
	}
}

// sortedKeys keeps column order deterministic so generated SQL is stable
// across runs (and assertable in tests).
func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
