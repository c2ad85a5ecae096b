// Package catalog implements the operations callers use to manage per-user movie catalogs.
//
// A [Manager] wraps a [repositories.Store] and runs every multi-step write in a single transaction, so adding a
// movie to a catalog either creates both the movie and the association or neither.
//
// Movies are shared: adding a title that already exists (matched case-insensitively) links the existing row
// instead of inserting a second one. [AddResult] reports which of these happened.
package catalog
