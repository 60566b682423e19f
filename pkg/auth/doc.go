// Package auth provides identity tokens, password hashing and local
// registration/login for the eventbook API.
//
// # Tokens
//
// Tokens are HS256 JWTs signed with a shared secret. The payload carries the
// user id and admin flag plus iat/exp; every token lives exactly TokenTTL.
//
//	codec, _ := auth.NewTokenCodec([]byte(secret))
//	token, expiresAt, err := codec.Mint(user.ID, user.IsAdmin)
//	identity, err := codec.Verify(token) // ErrTokenExpired / ErrTokenMalformed
//
// The admin flag is a snapshot. Promoting or demoting a user does not affect
// tokens already issued; the change is visible after the next login.
//
// # Passwords
//
// PasswordHasher wraps bcrypt at cost 10. Login never tells the caller whether
// the email exists, the password was wrong, or the account is federated-only;
// all three are ErrInvalidCredentials.
//
// # Related Packages
//
//   - pkg/session: token delivery and extraction
//   - pkg/middleware: auth and admin gates
//   - pkg/sso: federated login
package auth
