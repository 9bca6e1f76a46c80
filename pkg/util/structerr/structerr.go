// Package structerr defines the common shape every structured error in
// this module implements, so callers can errors.Is against a sentinel
// type instead of a sentinel value.
package structerr

// StructError is an interface for errors that are structs, and can be compared for
// errors.Is equality. Equality is determined by type equality, i.e. if the pointer
// receiver is *MyError and target can be successfully casted using target.(*MyError),
// then target and the pointer receiver error are equal, otherwise not.
//
// This is needed because errors.Is does not support equality like this for structs
// by default. Every error type in this module that wants errors.Is support (rather
// than plain equality on a sentinel value) implements this interface.
type StructError interface {
	error
	Is(target error) bool
}
