package model

import "time"

// Report statuses as moved through moderation.
const (
    ReportPending   = "pending"
    ReportResolved  = "resolved"
    ReportDismissed = "dismissed"
)

// Report targets: a report points at either an animal listing or a
// user profile, never both.
const (
    ReportTargetAnimal = "animal"
    ReportTargetUser   = "user"
)

// Report is a moderation entity filed by a user against an animal
// listing or another user. Only the admin surface consumes reports.
type Report struct {
    ID         uint64    // reports.id
    ReporterID uint64    // reports.reporter_id (profile id)
    TargetType string    // reports.target_type: animal | user
    TargetID   uint64    // reports.target_id
    Reason     string    // reports.reason
    Details    string    // reports.details
    Status     string    // reports.status
    CreatedAt  time.Time // reports.created_at
    UpdatedAt  time.Time // reports.updated_at
}
