package models

// RegisteredRow reports one successfully processed spreadsheet row.
type RegisteredRow struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Status     string `json:"status"`
}

// BulkRegistrationResult is the transient outcome of one upload: both lists
// are always present, and every data row lands in exactly one of them.
type BulkRegistrationResult struct {
	Registered []RegisteredRow `json:"registered"`
	Errors     []string        `json:"errors"`
}

// NotificationOutcome reports one side-channel delivery attempt. Failures
// here never affect the attendance write they follow.
type NotificationOutcome struct {
	PersonID string `json:"person_id"`
	Channel  string `json:"channel"`
	Status   string `json:"status"`
}

// BulkMarkResult summarises a bulk attendance write.
type BulkMarkResult struct {
	Results       []EntryOutcome        `json:"results"`
	Notifications []NotificationOutcome `json:"notifications,omitempty"`
	Summary       BulkMarkSummary       `json:"summary"`
}

// EntryOutcome is the per-entry result line of a bulk mark.
type EntryOutcome struct {
	PersonID string `json:"person_id"`
	Message  string `json:"message"`
}

// BulkMarkSummary carries the present/absent accounting of a bulk mark.
type BulkMarkSummary struct {
	PresentCount int  `json:"present_count"`
	AbsentCount  int  `json:"absent_count"`
	Total        int  `json:"total"`
	Notified     bool `json:"notified"`
}
