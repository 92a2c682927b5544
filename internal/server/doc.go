// Package server serves developer tokens to MusicKit front-ends that cannot hold the signing key.
//
// # Routing
//
// [BasicRouter] registers method-qualified [http.ServeMux] patterns and wraps every handler with the
// registered [Middleware]; the first middleware added is the outermost.
//
// # Endpoints
//
//	GET /token   fresh token; optional origin and expires_in query parameters
//	GET /health  {"status":"ok"}
//
// Requested origins must appear in the configured allowed list. Issued tokens are optionally written to a
// [TokenStore] so they show up in `amx token list`.
//
// # Middleware
//
// [Logging] writes one line per request and never logs query strings. [Recover] converts panics to 500s.
// [CORS] echoes allowed origins.
package server
