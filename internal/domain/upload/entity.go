package upload

import (
	"math"
	"time"

	"filerelay/internal/telegram"
)

const bytesPerMB = 1024 * 1024

// Record describes one file forwarded to the channel. It exists only while the
// channel post exists, and is never modified after insertion.
type Record struct {
	ChannelMessageID int64             `json:"channel_message_id"`
	FileID           string            `json:"file_id"`
	FileType         telegram.FileKind `json:"file_type"`
	OwnerID          int64             `json:"owner_id"`
	UploadedAt       int64             `json:"uploaded_at"` // unix seconds, from the originating message
	Caption          string            `json:"caption,omitempty"`
	SizeMB           float64           `json:"size_mb"`
}

func (r Record) UploadTime() time.Time {
	return time.Unix(r.UploadedAt, 0)
}

// Stats aggregates the records currently in the ledger.
type Stats struct {
	TotalCount     int     `json:"total_count"`
	DistinctOwners int     `json:"distinct_owner_count"`
	TotalSizeMB    float64 `json:"total_size_mb"`
}

// SizeMB converts a declared byte count to megabytes rounded to two decimals.
func SizeMB(bytes int64) float64 {
	return math.Round(float64(bytes)/bytesPerMB*100) / 100
}
