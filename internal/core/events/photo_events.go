package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePhotoDiscarded = "karyawan.photo.discarded"
)

// Discard reasons.
const (
	ReasonReplaced       = "replaced"
	ReasonRemoved        = "removed"
	ReasonOwnerDeleted   = "owner_deleted"
	ReasonWriteAbandoned = "write_abandoned"
)

// PhotoDiscardedEvent announces that a stored photo file is no longer
// referenced by any employee and may be deleted.
type PhotoDiscardedEvent struct {
	BaseEvent
	KaryawanID int64  `json:"karyawan_id"`
	Path       string `json:"path"`
	Reason     string `json:"reason"`
}

func NewPhotoDiscardedEvent(karyawanID int64, path, reason string) *PhotoDiscardedEvent {
	return &PhotoDiscardedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePhotoDiscarded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"karyawan_id": karyawanID,
				"path":        path,
				"reason":      reason,
			},
		},
		KaryawanID: karyawanID,
		Path:       path,
		Reason:     reason,
	}
}
