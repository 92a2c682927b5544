// Package services implements the request pipeline and catalog resource layer for the Apple Music API.
//
// # Pipeline
//
// A [Request] names a method, a path relative to the base URL, ordered query parameters and extra headers.
// [Execute] runs it through a [Client]:
//
//  1. Resolve the URL; a malformed path is a validation error
//  2. Resolve a bearer token from the [auth.Strategy]; generated strategies sign a new token per call
//  3. Set Authorization and Content-Type, then apply the request's own headers over them
//  4. Send with the client timeout; transport failures and timeouts are network errors
//  5. Read at most [MaxBodySize] bytes; a larger body is a parsing error and is never decoded
//  6. Decode 2xx bodies into the caller's type, or hand anything else to [Classify]
//
// Nothing is retried or cached.
//
// # Error Classification
//
// [Classify] prefers the service's own {"errors": [...]} envelope and reports its first entry as primary,
// keeping every field exactly as received. Without a usable envelope it maps the status code:
//   - 400, 404, 422, 429 : [shared.KindValidation]
//   - 401, 403, 5xx : [shared.KindNetwork]
//   - anything else : [shared.KindUnknown]
//
// # Resources
//
// [Catalog] exposes a [CatalogResource] per resource type, [StorefrontResource] and search. Inputs are checked
// before a request is built, so an empty id never reaches the transport. Pagination cursors ("next") are returned
// as received and never followed.
//
// # Raw API
//
// [APIService] issues unmodelled GET requests through an oauth2 transport backed by the same strategy.
package services
