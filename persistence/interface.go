// persistence/interface.go
package persistence

import (
	"github.com/wfunc/roomserver/models"
)

// Store archives finished games. Live server state is never restored
// from it; it exists for history and stats only.
type Store interface {
	SaveGameRecord(record *models.GameRecord) error
	RecentGameRecords(limit int) ([]*models.GameRecord, error)
	Close() error
}
