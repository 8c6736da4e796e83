// Package repository is the data access layer. Each repository wraps one
// table; WithTx returns a copy bound to a transaction so services can compose
// several writes atomically.
package repository

import "errors"

// ErrConflict is returned by compare-and-set updates that matched no row
// because another writer changed it first.
var ErrConflict = errors.New("concurrent modification")
