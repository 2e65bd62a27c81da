// Package models defines the persistent entities of mcontrol.
//
// [Attempt] records one loopback sign-in attempt: the port that was bound, the redirect URI handed to the provider,
// and how the attempt ended ([AttemptStatus]). The authorization code is deliberately not part of the model.
//
// All persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
