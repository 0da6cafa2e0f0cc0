// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Queries are written as raw SQL against the schema created by the
// migrations in the db directory, except for simple lookups which use the
// GORM query builder over the models in pkg/model.
package gorm
