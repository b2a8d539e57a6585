package model

import "time"

// Roles recognized by the application. The value is stored on the
// profile row and embedded in the JWT "role" claim.
const (
    RoleAdopter    = "adopter"
    RoleAdvertiser = "advertiser"
    RoleAdmin      = "admin"
)

// User represents an authentication identity as stored in the `users`
// table. It carries only credentials; application-level data lives on
// the Profile, which a database trigger creates alongside each user.
// The two records are joined by Profile.UserID, and the ids are not
// guaranteed to be equal.
//
// Fields:
//  ID           – primary key identifier of the auth identity.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Confirmed    – whether the email was confirmed.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Confirmed    bool      // users.confirmed
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to an auth identity and contains metadata for
// expiry and revocation. The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
