package models

import (
	"time"

	"github.com/lib/pq"
)

// PersonKind discriminates the four person collections sharing an attendance
// ledger.
type PersonKind string

const (
	KindAdmin    PersonKind = "admin"
	KindTeacher  PersonKind = "teacher"
	KindIntern   PersonKind = "intern"
	KindEmployee PersonKind = "employee"
)

// Role tags carried on person records and JWT claims.
const (
	RoleAdmin    = "Admin"
	RoleTeacher  = "Teacher"
	RoleIntern   = "Intern"
	RoleEmployee = "Employee"
)

// Admin is the top-level operator account.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Teacher instructs batches and carries a per-date class roll-up.
type Teacher struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	BatchIDs []string `db:"-" json:"batches,omitempty"`
}

// Intern is a learner who may belong to multiple batches.
type Intern struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	BatchIDs []string `db:"-" json:"batches,omitempty"`
}

// Employee belongs to exactly one admin context with a unique external id.
type Employee struct {
	ID           string         `db:"id" json:"id"`
	EmployeeID   string         `db:"employee_id" json:"employee_id"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Designation  string         `db:"designation" json:"designation"`
	Department   string         `db:"department" json:"department"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	MobileNo     string         `db:"mobile_no" json:"mobile_no,omitempty"`
	JoiningDate  *time.Time     `db:"joining_date" json:"joining_date,omitempty"`
	Address      string         `db:"address" json:"address,omitempty"`
	Role         string         `db:"role" json:"role"`
	AdminID      string         `db:"admin_id" json:"admin_id"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
