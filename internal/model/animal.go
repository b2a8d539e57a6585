package model

import "time"

// Animal listing statuses. An animal is never hard-deleted by normal
// users; admins remove a listing by flipping it to StatusRemoved.
const (
    AnimalAvailable = "available"
    AnimalPending   = "pending"
    AnimalAdopted   = "adopted"
    AnimalRemoved   = "removed"
)

// Animal represents a listing in the `animals` table.
//
// Fields:
//  ID           – primary key identifier.
//  AdvertiserID – profile id of the advertiser who listed it.
//  Name         – animal's name.
//  Species      – e.g. dog, cat.
//  Breed        – breed description.
//  AgeMonths    – age in months.
//  Size         – small | medium | large.
//  Gender       – male | female.
//  Description  – free-text description.
//  City         – where the animal is located.
//  Status       – available | pending | adopted | removed.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Animal struct {
    ID           uint64    // animals.id
    AdvertiserID uint64    // animals.advertiser_id
    Name         string    // animals.name
    Species      string    // animals.species
    Breed        string    // animals.breed
    AgeMonths    uint32    // animals.age_months
    Size         string    // animals.size
    Gender       string    // animals.gender
    Description  string    // animals.description
    City         string    // animals.city
    Status       string    // animals.status
    CreatedAt    time.Time // animals.created_at
    UpdatedAt    time.Time // animals.updated_at
}

// AnimalListing is the denormalized read shape used by browse
// endpoints. It is produced either by the `animal_listings` SQL view
// or by an explicit join when the view is absent; both paths must
// yield identical field values.
type AnimalListing struct {
    Animal
    AdvertiserName string   // joined from profiles.name
    AdvertiserCity string   // joined from profiles.city
    PhotoURLs      []string // aggregated from animal_photos
}
