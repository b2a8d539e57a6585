// Package queue defines message payloads exchanged over the message broker.
package queue

// AdoptionApprovedEvent is published when an adoption request is
// approved and its cascade committed. It carries enough information
// for downstream consumers to notify the adopter and the losing
// applicants without querying the primary database.
type AdoptionApprovedEvent struct {
    RequestID      uint64 `json:"request_id"`
    AnimalID       uint64 `json:"animal_id"`
    AnimalName     string `json:"animal_name"`
    AdopterID      uint64 `json:"adopter_id"`
    AdopterName    string `json:"adopter_name"`
    AdvertiserID   uint64 `json:"advertiser_id"`
    AdvertiserName string `json:"advertiser_name"`
    RejectedCount  int64  `json:"rejected_count"`
    ApprovedAt     string `json:"approved_at"`
}
