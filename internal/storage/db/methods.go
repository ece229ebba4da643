package db

import "time"

// Created returns the time the session was issued or last refreshed, as
// recorded by the database clock.
func (s Session) Created() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// ExpiresAt returns the first instant at which the session is no longer valid
// for the given TTL. Validity does not slide; only a refresh moves it.
func (s Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.Created().Add(ttl)
}
