/*
Package session owns the lifecycle of conversation state.

The Manager sits between hosts and a ports.StateStore. It creates sessions on
first contact, serialises turns per session ID, and exposes explicit reset and
evict operations. Capacity and idle-time bounds are enforced by the store it
wraps.
*/
package session
