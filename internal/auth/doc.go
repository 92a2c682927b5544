// Package auth produces the developer tokens that authenticate Apple Music API requests.
//
// # Credentials
//
// A [Credential] pairs a MusicKit team identifier and key identifier with the ES256 private key downloaded
// from the Apple Developer portal (an AuthKey_<KEY_ID>.p8 file). Keys may be supplied in memory, as PEM, or as
// a file path; file paths are read and parsed when the credential is built.
//
// # Token Generation
//
// [TokenGenerator] signs JWTs with go-jose:
//   - header: alg=ES256, kid=<key id>
//   - payload: iss=<team id>, iat, exp and an optional origin list
//
// Apple rejects tokens living longer than [MaxValidity] (15,777,000 seconds); the generator refuses to sign
// them. Tokens are never cached: callers that want reuse keep the string and re-check it with
// [Claims.Validate] first.
//
// # Strategies
//
// A client authenticates with exactly one [Strategy]: [StaticToken] for a pre-issued token, or [Generated]
// to sign a new token per request. [Strategy.TokenSource] exposes the same behaviour as an
// [golang.org/x/oauth2.TokenSource] for plain HTTP clients.
package auth
