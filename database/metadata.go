package database

import (
	"context"
	"fmt"

	"github.com/luismalamoc/my-utility-package/apperrors"
)

// Column describes one reflected column.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

// Table describes one reflected table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Metadata holds the schema discovered from the live database.
type Metadata struct {
	Tables []Table `json:"tables"`
}

// Table returns the named table, if present.
func (m *Metadata) Table(name string) (Table, bool) {
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableNames returns the reflected table names in schema order.
func (m *Metadata) TableNames() []string {
	names := make([]string, len(m.Tables))
	for i, t := range m.Tables {
		names[i] = t.Name
	}
	return names
}

// Metadata reflects the public schema on first call and caches the result.
// A reflection failure is surfaced to the caller and retried on the next
// call; failures are never cached.
func (c *Connection) Metadata(ctx context.Context) (*Metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.meta != nil {
		return c.meta, nil
	}

	meta, err := reflectSchema(ctx, c)
	if err != nil {
		return nil, apperrors.ReflectionError("failed to reflect database schema", err)
	}

	c.meta = meta
	return meta, nil
}

func reflectSchema(ctx context.Context, c *Connection) (*Metadata, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	meta := &Metadata{}
	index := make(map[string]int)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		index[name] = len(meta.Tables)
		meta.Tables = append(meta.Tables, Table{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	rows.Close()

	columns, err := c.pool.Query(ctx, `
		SELECT table_name, column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer columns.Close()

	for columns.Next() {
		var tableName, columnName, dataType, isNullable string
		if err := columns.Scan(&tableName, &columnName, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		i, ok := index[tableName]
		if !ok {
			continue // views and other non-table relations
		}
		meta.Tables[i].Columns = append(meta.Tables[i].Columns, Column{
			Name:     columnName,
			DataType: dataType,
			Nullable: isNullable == "YES",
		})
	}
	if err := columns.Err(); err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}

	return meta, nil
}
