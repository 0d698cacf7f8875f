package registration

import "time"

// ExpiryPolicy decides when a pending registration stops being verifiable.
// A zero time means the registration never expires.
type ExpiryPolicy interface {
	ExpiresAt(createdAt time.Time) time.Time
}

// NoExpiry keeps pending registrations until they are verified or replaced.
type NoExpiry struct{}

func (NoExpiry) ExpiresAt(time.Time) time.Time { return time.Time{} }

// FixedTTL expires pending registrations a fixed duration after creation.
type FixedTTL time.Duration

func (d FixedTTL) ExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(time.Duration(d))
}

// PolicyFor returns FixedTTL for a positive ttl and NoExpiry otherwise.
func PolicyFor(ttl time.Duration) ExpiryPolicy {
	if ttl > 0 {
		return FixedTTL(ttl)
	}
	return NoExpiry{}
}
