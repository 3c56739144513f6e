package engine

import "github.com/google/uuid"

// RandomClusterID returns a fresh, collision-free cluster id (spec.md §6
// random_cluster_id) — a convenience for hosts that don't already have
// their own id scheme (e.g. a document editor's own node ids).
func RandomClusterID() string {
	return uuid.NewString()
}
