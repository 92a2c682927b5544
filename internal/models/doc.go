// Package models defines domain entities and persistence interfaces for amx.
//
// The package contains two categories of types:
//
// 1. Catalog payloads: generic envelopes and attribute structs decoded from Apple Music responses
//   - [ResourceResponse] : {"data": [...], "next": "..."} with the cursor returned as-is
//   - [Resource] : id/type/href plus typed attributes and raw relationships
//   - [SongAttributes], [AlbumAttributes], [ArtistAttributes], [PlaylistAttributes], [MusicVideoAttributes],
//     [StorefrontAttributes]
//   - [SearchResponse] : per-type search hits
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [DeveloperToken] : signed developer tokens saved for reuse
//   - [LookupRecord] : outcomes of batch catalog lookups
//
// All persistent entities implement the Model interface providing ID, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
