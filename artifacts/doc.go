// Package artifacts persists run outputs to object storage: the resolved run
// arguments written at startup and projection head checkpoints written during
// training. Artifacts live under <run name>/ in one bucket so a run's full
// record can be fetched or deleted as a unit.
package artifacts
