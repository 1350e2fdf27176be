// Package mocks provides hand-written test doubles for the store and auth
// interfaces. Each mock keeps a working in-memory default implementation and
// exposes Fn fields to override individual methods per test.
package mocks
