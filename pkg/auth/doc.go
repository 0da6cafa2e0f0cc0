// Package auth issues and verifies flagkeep session tokens and hashes
// user passwords.
//
// Session tokens are HS256 JWTs signed with FLAGKEEP_AUTH_SECRET. The
// subject is the username and the uid claim carries the numeric user id.
// Clients send them in the Authorization header, either as
// "Bearer <token>" or as the bare token.
package auth
