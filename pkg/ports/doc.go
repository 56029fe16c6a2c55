/*
Package ports defines the driven ports (interfaces) for the Turing service.

These interfaces decouple the registry and session manager from storage
backends, so the same core runs in a single process (memory) or across
replicas (Redis).

# Key Interfaces

  - DefinitionStore: persists validated machine definitions.
  - InstanceStore: persists instance configurations between operations.
  - DistributedLocker: serializes access to one instance across replicas.
*/
package ports
