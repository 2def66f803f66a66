package models

import (
	"time"

	"go-print-erp/internal/workflow"

	"gorm.io/datatypes"
)

// TaskAssignment - a unit of work assigned to an employee against one
// invoice item. DependsOn is informational only.
type TaskAssignment struct {
	ID             uint                      `gorm:"primaryKey" json:"id"`
	InvoiceItemID  uint                      `gorm:"not null;index" json:"invoiceItemId"`
	TaskType       string                    `gorm:"size:30;not null" json:"taskType"`
	TaskName       string                    `gorm:"size:150;not null" json:"taskName"`
	Description    string                    `gorm:"type:text" json:"description,omitempty"`
	AssignedTo     uint                      `gorm:"not null;index" json:"assignedTo"`
	AssignedBy     uint                      `json:"assignedBy"`
	Status         workflow.TaskStatus       `gorm:"size:20;not null;index" json:"status"`
	Priority       Priority                  `gorm:"size:10" json:"priority"`
	EstimatedHours float64                   `json:"estimatedHours"`
	ActualHours    float64                   `json:"actualHours"`
	StartDate      *time.Time                `json:"startDate,omitempty"`
	DueDate        *time.Time                `json:"dueDate,omitempty"`
	CompletedDate  *time.Time                `json:"completedDate,omitempty"`
	DependsOn      datatypes.JSONSlice[uint] `json:"dependsOn"`
	Notes          string                    `gorm:"type:text" json:"notes,omitempty"`
	IsDeleted      bool                      `gorm:"not null;index" json:"isDeleted"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

var TaskTypes = []string{"design", "printing", "binding", "lamination", "cutting", "qc", "delivery", "other"}
