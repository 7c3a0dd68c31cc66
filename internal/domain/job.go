package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a fetch job
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial" // collection truncated by deadline, archive produced
	StatusFailed     JobStatus = "failed"
)

// MediaKind classifies what kind of file a job produced
type MediaKind string

const (
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
	KindImage    MediaKind = "image"
	KindDocument MediaKind = "document"
)

// Job represents one request to fetch media from a single source URL
// under a deadline. The runner owns it exclusively until it reaches a
// terminal state.
type Job struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	URL          string     `json:"url" gorm:"not null"`
	Platform     Platform   `json:"platform" gorm:"not null;index"`
	Tier         Tier       `json:"tier,omitempty"`
	Status       JobStatus  `json:"status" gorm:"not null;index"`
	MediaKind    MediaKind  `json:"media_kind,omitempty"`
	FallbackUsed bool       `json:"fallback_used" gorm:"default:false"`
	ErrorMessage string     `json:"error_message,omitempty"`
	FilePath     string     `json:"file_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a new fetch job in the queued state
func NewJob(url string, platform Platform, tier Tier) *Job {
	return &Job{
		ID:        uuid.New().String(),
		URL:       url,
		Platform:  platform,
		Tier:      tier,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// MarkProcessing marks the job as processing
func (j *Job) MarkProcessing() {
	j.Status = StatusProcessing
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted marks the job as completed with the produced file
func (j *Job) MarkCompleted(filePath string, kind MediaKind) {
	j.Status = StatusCompleted
	j.FilePath = filePath
	j.MediaKind = kind
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkPartial marks a collection job whose deadline truncated it but
// which still produced an archive of the surviving items
func (j *Job) MarkPartial(archivePath string) {
	j.Status = StatusPartial
	j.FilePath = archivePath
	j.MediaKind = KindDocument
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed marks the job as failed
func (j *Job) MarkFailed(err error) {
	j.Status = StatusFailed
	j.ErrorMessage = err.Error()
	j.UpdatedAt = time.Now()
}

// IsTerminal checks if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusPartial || j.Status == StatusFailed
}

// FetchResult is the outcome of a successful fetch: one or more local
// files plus the inferred media kind of the first file. The consumer is
// responsible for deleting the files after use.
type FetchResult struct {
	Files        []string
	Kind         MediaKind
	FallbackUsed bool
}

// Path returns the primary file of the result
func (r *FetchResult) Path() string {
	if len(r.Files) == 0 {
		return ""
	}
	return r.Files[0]
}

// AlbumBundle is an archive of the items fetched from a collection URL.
// Partial is set when the deadline truncated the collection; an archive
// exists if and only if at least one item succeeded.
type AlbumBundle struct {
	ArchivePath string
	ItemCount   int
	Partial     bool
}

// InferMediaKind classifies a file by its extension
func InferMediaKind(path string) MediaKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".webm", ".mkv", ".mov", ".m4v", ".avi":
		return KindVideo
	case ".mp3", ".m4a", ".ogg", ".opus", ".wav", ".flac":
		return KindAudio
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return KindImage
	default:
		return KindDocument
	}
}
