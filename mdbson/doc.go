// Package mdbson supports rendering and building BSON documents.
// Result data is rendered as relaxed extended JSON for display,
// update documents are built from ordered field lists.
package mdbson
