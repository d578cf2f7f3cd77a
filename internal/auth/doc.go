// Package auth authenticates catalog users and decides what they may do.
//
// It provides:
//   - HS256 session tokens carrying only the username, verified with a
//     strict parser (TokenCodec)
//   - Argon2id password hashing with verification of legacy bcrypt digests
//   - A three-tier role model (USER → EDITOR → ADMIN) tolerant of the legacy
//     "ROLE_" prefix
//   - A pure, table-driven access decision function (Decide)
//   - Per-request resolution of a token to the caller's current role
//     (SessionResolver), so role changes apply without re-login
//   - SQLite and PostgreSQL user stores and ADMIN account management
//
// Roles are never embedded in tokens. A promoted or demoted user keeps their
// token and the next request sees the new role.
package auth
