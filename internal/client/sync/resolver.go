package sync

import (
	"github.com/moodmapper/moodmapper/internal/client/models"
)

// ShouldApplyRemote decides whether a remote document wins over the local
// version of the same entry: last-write-wins on lastModified, whole-record,
// no field merging.
//
// A missing local version always applies (create). Ties apply the remote
// side, so a round-trip echo converges instead of oscillating. A strictly
// older remote document is discarded by the caller; that is expected
// steady-state behavior, not a fault.
func ShouldApplyRemote(remote models.Document, local *models.Entry) bool {
	if local == nil {
		return true
	}
	return !remote.LastModified.Before(local.LastModified)
}
