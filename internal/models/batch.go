package models

import "time"

// BatchStatus tracks a batch through its schedule window.
type BatchStatus string

const (
	BatchStatusUpcoming  BatchStatus = "Upcoming"
	BatchStatusOngoing   BatchStatus = "Ongoing"
	BatchStatusCompleted BatchStatus = "Completed"
	BatchStatusCancelled BatchStatus = "Cancelled"
)

// Valid returns true when the status is a supported value.
func (s BatchStatus) Valid() bool {
	switch s {
	case BatchStatusUpcoming, BatchStatusOngoing, BatchStatusCompleted, BatchStatusCancelled:
		return true
	default:
		return false
	}
}

// BatchMode is the delivery mode of instruction.
type BatchMode string

const (
	BatchModeOnline  BatchMode = "Online"
	BatchModeOffline BatchMode = "Offline"
	BatchModeHybrid  BatchMode = "Hybrid"
)

// Valid returns true when the mode is a supported value.
func (m BatchMode) Valid() bool {
	switch m {
	case BatchModeOnline, BatchModeOffline, BatchModeHybrid:
		return true
	default:
		return false
	}
}

// Batch groups interns under instruction. (BatchName, SequenceNumber) is
// unique. The batch owns its roster; the intern side of the link is kept
// consistent by explicit dual writes, not by the database.
type Batch struct {
	ID             string      `db:"id" json:"id"`
	BatchName      string      `db:"batch_name" json:"batch_name"`
	ScheduleTitle  string      `db:"schedule_title" json:"schedule_title"`
	ModeOfBatch    BatchMode   `db:"mode_of_batch" json:"mode_of_batch"`
	SequenceNumber int         `db:"sequence_number" json:"sequence_number"`
	Location       string      `db:"location" json:"location"`
	Subject        string      `db:"subject" json:"subject"`
	Duration       string      `db:"duration" json:"duration"`
	StartDate      time.Time   `db:"start_date" json:"start_date"`
	EndDate        time.Time   `db:"end_date" json:"end_date"`
	TimeSlot       string      `db:"time_slot" json:"time"`
	TeacherID      *string     `db:"teacher_id" json:"teacher,omitempty"`
	Description    string      `db:"description" json:"description,omitempty"`
	Status         BatchStatus `db:"status" json:"status"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`

	StudentIDs []string `db:"-" json:"students,omitempty"`
}

// Notice is an announcement pinned to a batch.
type Notice struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Details   string    `db:"details" json:"details"`
	Date      time.Time `db:"date" json:"date"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BatchNote is teaching material attached to a batch, optionally carrying an
// uploaded file stored on the local filesystem.
type BatchNote struct {
	ID         string    `db:"id" json:"id"`
	BatchID    string    `db:"batch_id" json:"batch_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	FilePath   *string   `db:"file_path" json:"file_path,omitempty"`
	UploadedBy string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
