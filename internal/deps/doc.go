// Package deps resolves the external executables avsub shells out to and
// reports whether they are usable.
package deps
