// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on database/sql over the pgx stdlib driver. All
// implementations map driver errors to the store sentinel errors via
// MapError so callers never depend on driver-specific error types.
package postgres
