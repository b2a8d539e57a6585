package model

import "time"

// Profile is the application-level user record stored in the
// `profiles` table. A database trigger inserts a skeleton profile row
// when an auth identity is created; registration then fills it in.
// The profile id, not the auth id, is the join key used by every
// other table (animals.advertiser_id, adoption_requests.adopter_id,
// conversations, reports).
//
// Fields:
//  ID        – primary key identifier of the profile.
//  UserID    – auth identity this profile belongs to.
//  Name      – display name.
//  Email     – contact email, mirrors users.email.
//  Role      – adopter | advertiser | admin.
//  Phone     – contact phone number.
//  City      – city used for browse filtering.
//  Bio       – free-text description.
//  AvatarURL – public URL of the uploaded avatar (nullable).
//  IsActive  – false when the account is blocked by an admin.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Profile struct {
    ID        uint64    // profiles.id
    UserID    uint64    // profiles.user_id
    Name      string    // profiles.name
    Email     string    // profiles.email
    Role      string    // profiles.role
    Phone     string    // profiles.phone
    City      string    // profiles.city
    Bio       string    // profiles.bio
    AvatarURL *string   // profiles.avatar_url (nullable)
    IsActive  bool      // profiles.is_active
    CreatedAt time.Time // profiles.created_at
    UpdatedAt time.Time // profiles.updated_at
}
