// Package sec provides authentication and session primitives for the web
// application.
//
// # Sessions
//
// A successful login or registration issues an opaque, random session token
// which is stored server side and sent to the client in the [CookieName]
// cookie. Each user has at most one session: logging in again replaces the
// previous token, which stops resolving immediately. Sessions expire a fixed
// TTL after issue, measured by the database clock; resolving a session does
// not extend it.
//
// # Components
//
//   - [Gateway]: login, registration, logout, and current-user resolution
//   - [CookieCodec]: session cookie encoding and decoding
//   - [GetIdentity], [SetIdentity]: context accessors for the resolved identity
//   - [Bcrypt], [HashPassword], [ComparePassword]: bcrypt password hashing
package sec
