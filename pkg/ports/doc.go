// Package ports defines the driven-side interfaces of the Guidepost engine:
// where dialogue content comes from (Catalog), where session snapshots go
// (StateStore), who hears rendered text (Narrator) and how time is observed
// (Clock). Adapters implement these so the core stays testable and free of
// infrastructure imports.
package ports
