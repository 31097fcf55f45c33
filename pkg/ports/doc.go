/*
Package ports defines the driven ports (interfaces) for the aidbuddy engine.

These interfaces decouple the conversation core from storage and coordination
backends, so the same engine runs against an in-process store or Redis.

# Key Interfaces

  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.

The reusable store contract suite lives in the tests subpackage.
*/
package ports
