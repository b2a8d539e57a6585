package model

import "time"

// Adoption request statuses. At most one request per animal may ever
// reach RequestApproved; the approval cascade enforces it.
const (
    RequestPending  = "pending"
    RequestApproved = "approved"
    RequestRejected = "rejected"
)

// AdoptionRequest links an adopter to an animal they want to adopt.
// Created by the adopter with a free-text message; the advertiser (or
// an admin) approves or rejects it. Approving one request rejects all
// sibling pending requests for the same animal and marks the animal
// adopted, in a single transaction.
//
// Fields:
//  ID          – primary key identifier.
//  AnimalID    – animal being requested.
//  AdopterID   – profile id of the requesting adopter.
//  Status      – pending | approved | rejected.
//  Message     – free-text message from the adopter.
//  VisitAt     – optional scheduled visit time (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type AdoptionRequest struct {
    ID        uint64     // adoption_requests.id
    AnimalID  uint64     // adoption_requests.animal_id
    AdopterID uint64     // adoption_requests.adopter_id
    Status    string     // adoption_requests.status
    Message   string     // adoption_requests.message
    VisitAt   *time.Time // adoption_requests.visit_at (nullable)
    CreatedAt time.Time  // adoption_requests.created_at
    UpdatedAt time.Time  // adoption_requests.updated_at
}

// RequestSummary is the denormalized shape returned to advertisers and
// adopters when listing requests: the request plus display fields
// joined from the animal and the adopter profile.
type RequestSummary struct {
    AdoptionRequest
    AnimalName  string // joined from animals.name
    AdopterName string // joined from profiles.name
}
