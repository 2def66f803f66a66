package services

import (
	"context"
	"slices"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/models"
	"go-print-erp/internal/pagination"
	"go-print-erp/internal/workflow"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskInput struct {
	InvoiceItemID  uint                `json:"invoiceItemId" binding:"required"`
	TaskType       string              `json:"taskType" binding:"required"`
	TaskName       string              `json:"taskName" binding:"required"`
	Description    string              `json:"description"`
	AssignedTo     uint                `json:"assignedTo" binding:"required"`
	Status         workflow.TaskStatus `json:"status"`
	Priority       models.Priority     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	EstimatedHours float64             `json:"estimatedHours" binding:"gte=0"`
	StartDate      *time.Time          `json:"startDate"`
	DueDate        *time.Time          `json:"dueDate"`
	DependsOn      []uint              `json:"dependsOn"`
	Notes          string              `json:"notes"`
}

// TaskUpdateInput changes the details of a task. Status has its own
// operation.
type TaskUpdateInput struct {
	TaskType       *string          `json:"taskType"`
	TaskName       *string          `json:"taskName"`
	Description    *string          `json:"description"`
	AssignedTo     *uint            `json:"assignedTo"`
	Priority       *models.Priority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	EstimatedHours *float64         `json:"estimatedHours" binding:"omitempty,gte=0"`
	StartDate      *time.Time       `json:"startDate"`
	DueDate        *time.Time       `json:"dueDate"`
	DependsOn      *[]uint          `json:"dependsOn"`
	Notes          *string          `json:"notes"`
}

type TaskStatusInput struct {
	Status      workflow.TaskStatus `json:"status" binding:"required"`
	ActualHours *float64            `json:"actualHours" binding:"omitempty,gte=0"`
	Notes       *string             `json:"notes"`
}

// TaskFilter holds the filters of the task list. Mine narrows the list
// to the caller's own tasks.
type TaskFilter struct {
	pagination.Params
	InvoiceItemID uint                `form:"invoiceItemId"`
	AssignedTo    uint                `form:"assignedTo"`
	Status        workflow.TaskStatus `form:"status"`
	TaskType      string              `form:"taskType"`
	Mine          bool                `form:"mine"`
}

type TaskService struct {
	db         *gorm.DB
	propagator *StatusPropagator
	now        func() time.Time
}

func NewTaskService(db *gorm.DB, propagator *StatusPropagator) *TaskService {
	return &TaskService{db: db, propagator: propagator, now: time.Now}
}

// Create assigns a task against a live item to an active employee.
func (s *TaskService) Create(ctx context.Context, actor auth.Principal, in TaskInput) (*models.TaskAssignment, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("only admins and managers can assign tasks")
	}
	if err := validateTask(in); err != nil {
		return nil, err
	}

	task := models.TaskAssignment{
		InvoiceItemID:  in.InvoiceItemID,
		TaskType:       in.TaskType,
		TaskName:       in.TaskName,
		Description:    in.Description,
		AssignedTo:     in.AssignedTo,
		AssignedBy:     actor.ID,
		Status:         workflow.TaskAssigned,
		Priority:       models.PriorityMedium,
		EstimatedHours: in.EstimatedHours,
		StartDate:      in.StartDate,
		DueDate:        in.DueDate,
		DependsOn:      datatypes.JSONSlice[uint](in.DependsOn),
		Notes:          in.Notes,
	}
	if in.Status != "" {
		task.Status = in.Status
	}
	if in.Priority != "" {
		task.Priority = in.Priority
	}
	if task.DependsOn == nil {
		task.DependsOn = datatypes.JSONSlice[uint]{}
	}
	s.stampStatus(&task)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireItem(tx, in.InvoiceItemID); err != nil {
			return err
		}
		if _, err := requireEmployee(tx, in.AssignedTo); err != nil {
			return err
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}

	s.propagator.Propagate(ctx, task.InvoiceItemID)
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, actor auth.Principal, f TaskFilter) (*pagination.Page[models.TaskAssignment], error) {
	q := s.db.WithContext(ctx).Model(&models.TaskAssignment{}).Scopes(models.NotDeleted)
	if f.InvoiceItemID != 0 {
		q = q.Where("invoice_item_id = ?", f.InvoiceItemID)
	}
	if f.Mine {
		q = q.Where("assigned_to = ?", actor.ID)
	} else if f.AssignedTo != 0 {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, apperr.Field("status", "status is not a valid task status")
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.TaskType != "" {
		q = q.Where("task_type = ?", f.TaskType)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	tasks := []models.TaskAssignment{}
	if err := q.Scopes(f.Params.Scope).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return &pagination.Page[models.TaskAssignment]{Data: tasks, Pagination: f.Params.Meta(total)}, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*models.TaskAssignment, error) {
	return requireTask(s.db.WithContext(ctx), id)
}

// Update changes task details. A new assignee is checked only when it
// differs from the current one.
func (s *TaskService) Update(ctx context.Context, actor auth.Principal, id uint, in TaskUpdateInput) (*models.TaskAssignment, error) {
	if !actor.CanManage() {
		return nil, apperr.Forbidden("only admins and managers can change task details")
	}

	var task *models.TaskAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = requireTask(tx, id)
		if err != nil {
			return err
		}

		if in.AssignedTo != nil && *in.AssignedTo != task.AssignedTo {
			if _, err := requireEmployee(tx, *in.AssignedTo); err != nil {
				return err
			}
			task.AssignedTo = *in.AssignedTo
			task.AssignedBy = actor.ID
		}
		if in.TaskType != nil {
			if !slices.Contains(models.TaskTypes, *in.TaskType) {
				return apperr.Field("taskType", "taskType is not a known task type")
			}
			task.TaskType = *in.TaskType
		}
		if in.TaskName != nil {
			if *in.TaskName == "" {
				return apperr.Field("taskName", "taskName is required")
			}
			task.TaskName = *in.TaskName
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.Priority != nil {
			task.Priority = *in.Priority
		}
		if in.EstimatedHours != nil {
			task.EstimatedHours = *in.EstimatedHours
		}
		if in.StartDate != nil {
			task.StartDate = in.StartDate
		}
		if in.DueDate != nil {
			task.DueDate = in.DueDate
		}
		if in.DependsOn != nil {
			task.DependsOn = datatypes.JSONSlice[uint](*in.DependsOn)
		}
		if in.Notes != nil {
			task.Notes = *in.Notes
		}
		return tx.Save(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a task to a new status. Only the assignee or an
// admin/manager may do so.
func (s *TaskService) UpdateStatus(ctx context.Context, actor auth.Principal, id uint, in TaskStatusInput) (*models.TaskAssignment, error) {
	if !in.Status.Valid() {
		return nil, apperr.Field("status", "status must be one of [Assigned, In Progress, On Hold, Completed, Cancelled]")
	}

	db := s.db.WithContext(ctx)
	task, err := requireTask(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage() && task.AssignedTo != actor.ID {
		return nil, apperr.Forbidden("only the assignee or an admin/manager can update this task")
	}

	task.Status = in.Status
	if in.ActualHours != nil {
		task.ActualHours = *in.ActualHours
	}
	if in.Notes != nil {
		task.Notes = *in.Notes
	}
	s.stampStatus(task)

	if err := db.Save(task).Error; err != nil {
		return nil, err
	}
	s.propagator.Propagate(ctx, task.InvoiceItemID)
	return task, nil
}

// Delete soft-deletes a task and recomputes its item.
func (s *TaskService) Delete(ctx context.Context, actor auth.Principal, id uint) error {
	if !actor.CanManage() {
		return apperr.Forbidden("only admins and managers can delete tasks")
	}
	db := s.db.WithContext(ctx)
	task, err := requireTask(db, id)
	if err != nil {
		return err
	}
	if err := db.Model(task).Update("is_deleted", true).Error; err != nil {
		return err
	}
	s.propagator.Propagate(ctx, task.InvoiceItemID)
	return nil
}

type TaskStats struct {
	Total    int64                         `json:"total"`
	ByStatus map[workflow.TaskStatus]int64 `json:"byStatus"`
}

// Stats counts live tasks per status, optionally for one employee.
func (s *TaskService) Stats(ctx context.Context, employeeID uint) (*TaskStats, error) {
	q := s.db.WithContext(ctx).Model(&models.TaskAssignment{}).Scopes(models.NotDeleted)
	if employeeID != 0 {
		q = q.Where("assigned_to = ?", employeeID)
	}

	var rows []struct {
		Status workflow.TaskStatus
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &TaskStats{ByStatus: make(map[workflow.TaskStatus]int64, len(workflow.TaskStatuses))}
	for _, st := range workflow.TaskStatuses {
		stats.ByStatus[st] = 0
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}
	return stats, nil
}

// stampStatus records when work started and finished.
func (s *TaskService) stampStatus(task *models.TaskAssignment) {
	now := s.now()
	switch task.Status {
	case workflow.TaskInProgress:
		if task.StartDate == nil {
			task.StartDate = &now
		}
		task.CompletedDate = nil
	case workflow.TaskCompleted:
		if task.CompletedDate == nil {
			task.CompletedDate = &now
		}
	default:
		task.CompletedDate = nil
	}
}

func validateTask(in TaskInput) error {
	fields := apperr.FieldErrors{}
	if in.InvoiceItemID == 0 {
		fields.Add("invoiceItemId", "invoiceItemId is required")
	}
	if in.AssignedTo == 0 {
		fields.Add("assignedTo", "assignedTo is required")
	}
	if !slices.Contains(models.TaskTypes, in.TaskType) {
		fields.Add("taskType", "taskType is not a known task type")
	}
	if in.TaskName == "" {
		fields.Add("taskName", "taskName is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		fields.Add("status", "status is not a valid task status")
	}
	if in.EstimatedHours < 0 {
		fields.Add("estimatedHours", "estimatedHours must be at least 0")
	}
	return fields.Err()
}
