// Package conventions provides the client-side persistence layer for
// conventions.
//
// # Overview
//
// The package defines a Repository interface for upsert, lookup and delete
// operations on models.Convention. A SQLite-backed implementation
// (SQLiteRepository) persists data using a dbx.DBTX (either *sql.DB or *sql.Tx).
//
// # Data Model
//
// Scalar attributes map to columns. Membership levels, shirt sizes, mail
// templates and integration settings are value objects owned by the
// convention and are stored as JSON documents, replaced wholesale on every
// upsert.
//
// Deleting a convention also deletes the attendees cached for it.
//
// Typical Usage
//
//	repo := conventions.NewSQLiteRepository(tx)
//	_ = repo.Upsert(ctx, &c)
//	all, _ := repo.GetAll(ctx)
//	one, _ := repo.GetByShortName(ctx, "acme2026")
package conventions
