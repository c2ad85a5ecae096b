// Package repositories implements SQLite persistence for the catalog entities.
//
// Each repository handles the queries for one table and works against either the connection pool or an open
// transaction, so a [Store] obtained from [Store.WithTx] sees and commits writes atomically.
//
// Key Implementations:
//   - [UserRepository] : catalog owners
//   - [MovieRepository] : shared movie metadata with case-insensitive name lookup
//   - [UserMovieRepository] : per-user associations and the joined catalog listing
//
// Missing rows are reported as [shared.ErrNotFound]. Constraint failures are classified into [shared.ErrDuplicate]
// and [shared.ErrForeignKey] by [shared.ClassifyError].
package repositories
