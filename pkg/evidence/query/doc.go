// Package query validates and normalizes evidence queries.
//
// The Validator rejects malformed queries (negative or oversized
// limits, unknown sort fields, inverted time ranges) before they reach
// a storage backend, and ApplyDefaults fills in sensible limit and
// ordering defaults for queries that leave them unset.
package query
