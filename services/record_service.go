// services/record_service.go
package services

import (
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/models"
	"github.com/wfunc/roomserver/persistence"
)

// RecordService archives finished games. Writes are fire-and-forget:
// the dispatcher must never block on storage, and a failed archive is
// a log line, not an error a client sees.
type RecordService struct {
	store persistence.Store
}

func NewRecordService(store persistence.Store) *RecordService {
	return &RecordService{store: store}
}

// Archive stores one finished game record. Safe to call from a
// goroutine; the store handles its own timeouts.
func (s *RecordService) Archive(record *models.GameRecord) {
	if err := s.store.SaveGameRecord(record); err != nil {
		logger.Log.Errorf("Failed to archive game record for room %d: %v", record.RoomID, err)
		return
	}
	logger.Log.Infof("Archived finished game for room %d", record.RoomID)
}

// Recent returns the most recently archived games.
func (s *RecordService) Recent(limit int) ([]*models.GameRecord, error) {
	return s.store.RecentGameRecords(limit)
}
