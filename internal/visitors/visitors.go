// Package visitors provisions anonymous visitor identities and derives the
// display aliases shown on the community wall. Identity is handed out
// explicitly by the server once per client context; nothing identifying is
// ever derived from the request.
package visitors

import (
	"hash/fnv"

	"github.com/google/uuid"
)

var visitorAdjectives = []string{
	"Curious", "Happy", "Clever", "Wise", "Playful", "Brave", "Swift", "Gentle", "Smart", "Busy",
	"Bright", "Bold", "Cheerful", "Creative", "Daring", "Eager", "Fearless", "Graceful", "Kind", "Lively",
	"Mighty", "Nimble", "Patient", "Quick", "Radiant", "Resourceful", "Spirited", "Steady", "Vibrant", "Warm",
}

var visitorAnimals = []string{
	"Panda", "Fox", "Owl", "Otter", "Lion", "Eagle", "Deer", "Raven", "Beaver", "Koala",
	"Dolphin", "Falcon", "Heron", "Hummingbird", "Jaguar", "Kingfisher", "Lynx", "Manta", "Swan", "Tiger",
	"Turtle", "Wolf", "Wren", "Gazelle", "Ibis", "Crane", "Finch", "Hare", "Seal", "Sparrow",
}

// ProvisionID issues a new opaque visitor identifier. Clients persist it and
// send it back with every heartbeat; the server never links it to anything
// identifying.
func ProvisionID() string {
	return uuid.NewString()
}

// Alias returns a stable anonymized display name for a visitor ID.
func Alias(visitorID string) string {
	h := fnv.New32a()
	h.Write([]byte(visitorID))
	index := int(h.Sum32())

	adjIndex := index % len(visitorAdjectives)
	animalIndex := (index / len(visitorAdjectives)) % len(visitorAnimals)

	return visitorAdjectives[adjIndex] + " " + visitorAnimals[animalIndex]
}
