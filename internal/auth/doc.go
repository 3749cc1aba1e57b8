// Package auth implements account registration, login and the JWT
// access/refresh token lifecycle.
//
// Access and refresh tokens are signed with separate secrets. Issued
// refresh tokens are recorded in a RefreshTokenStore so logout can
// revoke them and refresh can reject tokens that are no longer on
// record.
package auth
