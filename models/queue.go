package models

import "time"

// QueueExportVersion is the document version written by queue exports.
const QueueExportVersion = "1.0"

// QueueExportEntry identifies one queued item inside an export document.
// Imports match by ID first and fall back to (Title, Year) equality.
type QueueExportEntry struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Type  MediaType `json:"type"`
	Year  int       `json:"year,omitempty"`
}

// QueueExport is the serializable snapshot of the playback queue plus the
// three playback-mode toggles.
type QueueExport struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exportedAt"`
	Queue      []QueueExportEntry `json:"queue"`
	Settings   PlaybackModes      `json:"settings"`
}
