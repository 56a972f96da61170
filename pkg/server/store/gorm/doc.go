// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The same implementations serve SQLite and PostgreSQL: queries stick to
// the SQL both dialects share (LOWER/LIKE ... ESCAPE, INSERT ... ON
// CONFLICT).
package gorm
