package model

import "time"

// Conversation is a chat thread keyed by the
// (animal_id, adopter_id, advertiser_id) triple. A unique index on the
// triple backstops the application-level find-or-create, so two
// concurrent starts cannot produce duplicates.
//
// Fields:
//  ID           – primary key identifier.
//  AnimalID     – animal the conversation is about.
//  AdopterID    – profile id of the adopter side.
//  AdvertiserID – profile id of the advertiser side.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – bumped whenever a message is sent; list views sort
//                 by it.
type Conversation struct {
    ID           uint64    // conversations.id
    AnimalID     uint64    // conversations.animal_id
    AdopterID    uint64    // conversations.adopter_id
    AdvertiserID uint64    // conversations.advertiser_id
    CreatedAt    time.Time // conversations.created_at
    UpdatedAt    time.Time // conversations.updated_at
}

// ConversationDetail is the fully denormalized conversation shape:
// both party names and the animal name are joined in so callers never
// need follow-up lookups.
type ConversationDetail struct {
    Conversation
    AnimalName     string // joined from animals.name
    AdopterName    string // joined from profiles.name (adopter side)
    AdvertiserName string // joined from profiles.name (advertiser side)
}

// Message is an append-only chat message belonging to a conversation.
type Message struct {
    ID             uint64    // messages.id
    ConversationID uint64    // messages.conversation_id
    SenderID       uint64    // messages.sender_id (profile id)
    Content        string    // messages.content
    CreatedAt      time.Time // messages.created_at
}

// SimpleConversation is the flattened shape served by the chat façade:
// the peer (whoever the caller is not) plus a last-message preview.
type SimpleConversation struct {
    ID          uint64    // conversation id
    AnimalID    uint64    // animal the thread is about
    AnimalName  string    // display name of the animal
    PeerID      uint64    // profile id of the other party
    PeerName    string    // display name of the other party
    LastMessage string    // preview of the most recent message
    UpdatedAt   time.Time // recency hint for ordering
}

// SimpleMessage is the chat façade's message shape; Mine tells the
// caller whether they sent it without comparing ids client-side.
type SimpleMessage struct {
    ID        uint64
    SenderID  uint64
    Content   string
    Mine      bool
    CreatedAt time.Time
}
