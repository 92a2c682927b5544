// Package repositories implements SQLite persistence for the developer token ledger and the batch lookup log.
//
// Repositories handle CRUD operations with atomic sequence generation for human-readable ordering.
// Tokens are revoked with soft deletes via deleted_at timestamps and excluded from queries by default.
//
// Key Implementations:
//   - [TokenRepository] : developer tokens saved by `amx token generate --save`
//   - [LookupLogRepository] : append-only outcomes of batch lookups
//   - [LookupRecorder] : adapter that lets batch tasks write to the lookup log
//
// Sequence numbers provide stable, human-readable ordering (e.g., token #3) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
