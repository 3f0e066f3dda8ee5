package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

var (
	// ErrUnmappedTable is returned when a table is queried before MapTable.
	ErrUnmappedTable = errors.New("table is not mapped")

	// ErrUnknownColumn is returned when a query names a column that the
	// mapped struct does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

// Op is the comparison of a Filter.
type Op int

// The comparisons a Filter can make.
const (
	OpEqual Op = iota
	OpAtLeast
	OpAtMost
)

func (o Op) sql() string {
	switch o {
	case OpAtLeast:
		return ">="
	case OpAtMost:
		return "<="
	default:
		return "="
	}
}

// A Filter keeps the rows whose column compares to the value.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Equal keeps the rows whose column equals the value.
func Equal(column string, value any) Filter {
	return Filter{Column: column, Op: OpEqual, Value: value}
}

// AtLeast keeps the rows whose column is not smaller than the value.
func AtLeast(column string, value any) Filter {
	return Filter{Column: column, Op: OpAtLeast, Value: value}
}

// AtMost keeps the rows whose column is not larger than the value.
func AtMost(column string, value any) Filter {
	return Filter{Column: column, Op: OpAtMost, Value: value}
}

// QueryParams selects and orders the rows of a query. Columns are the field
// names of the struct the table is mapped to.
type QueryParams struct {
	Filters []Filter

	OrderBy    string
	Descending bool

	// Limit of 0 means no limit.
	Limit  int
	Offset int
}

// DataReader reads the tables of a recording back into structs.
type DataReader interface {
	// MapTable binds a table to the struct type of the sample entry. A table
	// must be mapped before it can be queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to structs of the mapped type.
	Query(ctx context.Context, tableName string, params QueryParams) ([]any, error)

	// Count returns the number of rows that pass the filters, ignoring the
	// ordering, the limit, and the offset.
	Count(ctx context.Context, tableName string, params QueryParams) (int, error)

	// Close closes the reader.
	Close() error
}

type mappedTable struct {
	entryType reflect.Type
	columns   map[string]int
}

type sqliteReader struct {
	db     *sql.DB
	tables map[string]mappedTable
}

// NewReader opens a recording for reading. The file name includes the
// .sqlite3 extension.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB creates a DataReader that reads from an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:     db,
		tables: make(map[string]mappedTable),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	t := reflect.TypeOf(sampleEntry)
	columns := make(map[string]int, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		columns[t.Field(i).Name] = i
	}

	r.tables[tableName] = mappedTable{entryType: t, columns: columns}
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.tables))
	for table := range r.tables {
		tables = append(tables, table)
	}

	sort.Strings(tables)

	return tables
}

func (r *sqliteReader) table(name string) (mappedTable, error) {
	t, ok := r.tables[name]
	if !ok {
		return mappedTable{}, fmt.Errorf("%w: %s", ErrUnmappedTable, name)
	}

	return t, nil
}

// where renders the filters. Column names are checked against the mapped
// struct, so only values travel as arguments.
func (t mappedTable) where(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))

	for _, f := range filters {
		if _, ok := t.columns[f.Column]; !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, f.Column)
		}

		conds = append(conds, fmt.Sprintf("%s %s ?", f.Column, f.Op.sql()))
		args = append(args, f.Value)
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, error) {
	t, err := r.table(tableName)
	if err != nil {
		return nil, err
	}

	where, args, err := t.where(params.Filters)
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + tableName + where

	if params.OrderBy != "" {
		if _, ok := t.columns[params.OrderBy]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, params.OrderBy)
		}

		query += " ORDER BY " + params.OrderBy
		if params.Descending {
			query += " DESC"
		}
	}

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", params.Limit, params.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return t.scan(rows)
}

func (r *sqliteReader) Count(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	t, err := r.table(tableName)
	if err != nil {
		return 0, err
	}

	where, args, err := t.where(params.Filters)
	if err != nil {
		return 0, err
	}

	var count int

	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// scan reads every row into a new entry. Columns without a matching field
// are read and dropped.
func (t mappedTable) scan(rows *sql.Rows) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []any

	for rows.Next() {
		entry := reflect.New(t.entryType)
		targets := make([]any, len(columns))

		for i, col := range columns {
			field, ok := t.columns[col]
			if !ok {
				targets[i] = new(any)
				continue
			}

			targets[i] = entry.Elem().Field(field).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}
