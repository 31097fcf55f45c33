/*
Package domain contains the core domain models for the aid assistant.

It defines the per-conversation session State, the Flow tagged variant that couples
the dialogue mode with its step cursor, the enumerations shared by the estimator and
the router, and the error taxonomy surfaced to hosts. This package is kept pure and
free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - State: the mutable record owned by one conversation (flow, collected answers).
  - Flow: mode × step as a single value; invalid pairs cannot be constructed.
  - Enrollment: enrollment intensity selector used to scale award amounts.
  - School: the shape of a tuition lookup result consumed by hosts.
*/
package domain
