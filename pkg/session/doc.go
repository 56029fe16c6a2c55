/*
Package session implements the instance registry.

A Manager creates, looks up, advances, resets and retires machine instances by
identifier. Every mutation of one instance runs under that instance's exclusive
lock (a reference-counted local mutex, plus an optional distributed lock when
instances are shared across replicas through Redis); different instances never
block each other.
*/
package session
