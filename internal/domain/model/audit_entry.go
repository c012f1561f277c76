package model

import "time"

// AuditTimeLayout is the timestamp format of the exported log.
const AuditTimeLayout = "2006-01-02 15:04:05"

// AuditColumns is the fixed header of the exported log.
var AuditColumns = []string{"timestamp", "user_id", "news", "response"}

// AuditEntry is one row of the append-only publish log.
type AuditEntry struct {
	ID            string
	Timestamp     time.Time
	OperatorID    int64
	Seed          string
	PublishedText string
}
