// Package record implements the generic record store: flat tables of
// untyped rows persisted as tagged XML documents and queried through a
// small, closed predicate language.
//
// A Row is a map from column name to string value; an absent key is an
// unset column. Filters are a sealed union (Equals, In, IsNull, NotNull,
// And) evaluated by the store itself, so callers can never smuggle
// arbitrary expressions into a query. A nil Filter matches every row.
//
// Mutations only touch memory; a single dirty flag decides whether Save
// writes anything. Save serializes the whole table to a fresh file and
// rotates it into place, keeping the previous document as a .bak.
package record
