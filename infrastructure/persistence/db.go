// Package persistence provides database storage implementations.
package persistence

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/groupnom/overture-import/internal/database"
)

// allModels returns every GORM model the importer reads or writes.
func allModels() []any {
	return []any{
		&RestaurantModel{},
		&ImportLogModel{},
	}
}

// AutoMigrate creates or updates the tables for all models.
func AutoMigrate(ctx context.Context, db database.Database) error {
	if err := db.Session(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// ValidateSchema verifies every GORM model field has a corresponding column
// in the database. Returns an error listing any missing tables or columns.
func ValidateSchema(ctx context.Context, db database.Database) error {
	gdb := db.Session(ctx)
	migrator := gdb.Migrator()

	var missing []string
	for _, model := range allModels() {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model schema: %w", err)
		}

		if !migrator.HasTable(model) {
			missing = append(missing, stmt.Table)
			continue
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return fmt.Errorf("get column types for %s: %w", stmt.Table, err)
		}

		actual := make(map[string]bool, len(columnTypes))
		for _, ct := range columnTypes {
			actual[ct.Name()] = true
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.DBName == "-" {
				continue
			}
			if !actual[field.DBName] {
				missing = append(missing, stmt.Table+"."+field.DBName)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("schema validation failed, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
