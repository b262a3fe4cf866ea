package jobs

import (
	"context"
	"log"

	"worksite/internal/services"
)

// RecordAutoLock is the scheduled sweep that locks unlocked records once
// their record date passes the configured age. Locked records can no longer
// be corrected.
type RecordAutoLock struct {
	recordService services.RecordService
	afterDays     int
}

func NewRecordAutoLock(recordService services.RecordService, afterDays int) *RecordAutoLock {
	return &RecordAutoLock{
		recordService: recordService,
		afterDays:     afterDays,
	}
}

// Run performs one sweep.
func (j *RecordAutoLock) Run(ctx context.Context) error {
	locked, err := j.recordService.LockStale(ctx, j.afterDays)
	if err != nil {
		log.Printf("record auto-lock sweep failed: %v", err)
		return err
	}
	if locked > 0 {
		log.Printf("record auto-lock sweep locked %d records", locked)
	}
	return nil
}
