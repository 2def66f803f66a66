package services

import (
	"testing"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/models"
	"go-print-erp/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) assign(t *testing.T, itemID uint, to uint) *models.TaskAssignment {
	t.Helper()
	task, err := f.tasks.Create(f.ctx, f.manager, TaskInput{
		InvoiceItemID: itemID,
		TaskType:      "printing",
		TaskName:      "Print cards",
		AssignedTo:    to,
		DependsOn:     []uint{},
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) itemRollup(t *testing.T, itemID uint) (workflow.ItemStatus, int) {
	t.Helper()
	item, err := f.items.Get(f.ctx, itemID)
	require.NoError(t, err)
	return item.OverallStatus, item.TaskProgress
}

func TestTaskStatusPropagatesToItem(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID

	a := f.assign(t, itemID, f.employee.ID)
	status, progress := f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemNotStarted, status)
	assert.Equal(t, 0, progress)

	b := f.assign(t, itemID, f.employee.ID)
	f.assign(t, itemID, f.other.ID)

	_, err := f.tasks.UpdateStatus(f.ctx, f.employee, a.ID, TaskStatusInput{Status: workflow.TaskCompleted})
	require.NoError(t, err)
	_, err = f.tasks.UpdateStatus(f.ctx, f.employee, b.ID, TaskStatusInput{Status: workflow.TaskInProgress})
	require.NoError(t, err)

	status, progress = f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemInProgress, status)
	assert.Equal(t, 33, progress)
}

func TestTaskRollupCompletesAndReopens(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	a := f.assign(t, itemID, f.employee.ID)
	b := f.assign(t, itemID, f.employee.ID)

	_, err := f.tasks.UpdateStatus(f.ctx, f.manager, a.ID, TaskStatusInput{Status: workflow.TaskCompleted})
	require.NoError(t, err)
	_, err = f.tasks.UpdateStatus(f.ctx, f.manager, b.ID, TaskStatusInput{Status: workflow.TaskCompleted})
	require.NoError(t, err)
	status, progress := f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemCompleted, status)
	assert.Equal(t, 100, progress)

	c := f.assign(t, itemID, f.other.ID)
	status, progress = f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemInProgress, status)
	assert.Equal(t, 67, progress)

	require.NoError(t, f.tasks.Delete(f.ctx, f.admin, c.ID))
	status, progress = f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemCompleted, status)
	assert.Equal(t, 100, progress)
}

func TestTaskOnHoldRollup(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	a := f.assign(t, itemID, f.employee.ID)

	_, err := f.tasks.UpdateStatus(f.ctx, f.employee, a.ID, TaskStatusInput{Status: workflow.TaskOnHold})
	require.NoError(t, err)
	status, progress := f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemOnHold, status)
	assert.Equal(t, 0, progress)

	require.NoError(t, f.tasks.Delete(f.ctx, f.manager, a.ID))
	status, progress = f.itemRollup(t, itemID)
	assert.Equal(t, workflow.ItemNotStarted, status)
	assert.Equal(t, 0, progress)
}

func TestUpdateStatusStampsDates(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	task := f.assign(t, itemID, f.employee.ID)
	assert.Equal(t, workflow.TaskAssigned, task.Status)
	assert.Nil(t, task.StartDate)

	task, err := f.tasks.UpdateStatus(f.ctx, f.employee, task.ID, TaskStatusInput{Status: workflow.TaskInProgress})
	require.NoError(t, err)
	require.NotNil(t, task.StartDate)
	assert.Equal(t, testNow, *task.StartDate)
	assert.Nil(t, task.CompletedDate)

	task, err = f.tasks.UpdateStatus(f.ctx, f.employee, task.ID, TaskStatusInput{Status: workflow.TaskCompleted, ActualHours: ptr(3.5)})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedDate)
	assert.Equal(t, 3.5, task.ActualHours)

	_, err = f.tasks.UpdateStatus(f.ctx, f.employee, task.ID, TaskStatusInput{Status: "Done"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestTaskAuthorization(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	task := f.assign(t, itemID, f.employee.ID)

	_, err := f.tasks.Create(f.ctx, f.employee, TaskInput{InvoiceItemID: itemID, TaskType: "design", TaskName: "x", AssignedTo: f.employee.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.tasks.UpdateStatus(f.ctx, f.other, task.ID, TaskStatusInput{Status: workflow.TaskInProgress})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.tasks.Update(f.ctx, f.employee, task.ID, TaskUpdateInput{TaskName: ptr("renamed")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	assert.True(t, apperr.Is(f.tasks.Delete(f.ctx, f.employee, task.ID), apperr.KindForbidden))

	stored, err := f.tasks.Get(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.TaskAssigned, stored.Status)
}

func TestCreateTaskGatekeepers(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	inactive := f.user(t, "former", models.RoleEmployee, false)

	_, err := f.tasks.Create(f.ctx, f.admin, TaskInput{InvoiceItemID: itemID, TaskType: "design", TaskName: "Layout", AssignedTo: inactive.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "employee not found", apperr.As(err).Message)

	_, err = f.tasks.Create(f.ctx, f.admin, TaskInput{InvoiceItemID: 999, TaskType: "design", TaskName: "Layout", AssignedTo: f.employee.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "invoice item not found", apperr.As(err).Message)

	_, err = f.tasks.Create(f.ctx, f.admin, TaskInput{InvoiceItemID: itemID, TaskType: "juggling", AssignedTo: f.employee.ID})
	appErr := apperr.As(err)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "taskType")
	assert.Contains(t, appErr.Details, "taskName")

	var count int64
	f.db.Model(&models.TaskAssignment{}).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateTaskReassignment(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	task := f.assign(t, itemID, f.employee.ID)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.employee.ID).Update("is_active", false).Error)
	updated, err := f.tasks.Update(f.ctx, f.manager, task.ID, TaskUpdateInput{AssignedTo: &f.employee.ID, Notes: ptr("same assignee")})
	require.NoError(t, err)
	assert.Equal(t, "same assignee", updated.Notes)

	updated, err = f.tasks.Update(f.ctx, f.admin, task.ID, TaskUpdateInput{AssignedTo: &f.other.ID, DependsOn: &[]uint{task.ID + 100}})
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, updated.AssignedTo)
	assert.Equal(t, f.admin.ID, updated.AssignedBy)
	assert.Equal(t, []uint{task.ID + 100}, []uint(updated.DependsOn))

	inactive := f.user(t, "former", models.RoleEmployee, false)
	_, err = f.tasks.Update(f.ctx, f.admin, task.ID, TaskUpdateInput{AssignedTo: &inactive.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPropagationFailureDoesNotAbortTaskChange(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	task := f.assign(t, itemID, f.employee.ID)

	require.NoError(t, f.db.Model(&models.InvoiceItem{}).Where("id = ?", itemID).Update("is_deleted", true).Error)

	updated, err := f.tasks.UpdateStatus(f.ctx, f.employee, task.ID, TaskStatusInput{Status: workflow.TaskCompleted})
	require.NoError(t, err)
	assert.Equal(t, workflow.TaskCompleted, updated.Status)
	assert.Contains(t, f.scrape(t), "print_erp_status_propagation_failures_total 1")

	_, err = f.propagator.Recompute(f.ctx, itemID)
	assert.ErrorIs(t, err, errItemGone)
}

func TestListTasksAndStats(t *testing.T) {
	f := newFixture(t)
	itemID := f.createInvoice(t).Items[0].ID
	a := f.assign(t, itemID, f.employee.ID)
	f.assign(t, itemID, f.employee.ID)
	f.assign(t, itemID, f.other.ID)
	_, err := f.tasks.UpdateStatus(f.ctx, f.employee, a.ID, TaskStatusInput{Status: workflow.TaskCompleted})
	require.NoError(t, err)

	page, err := f.tasks.List(f.ctx, f.other, TaskFilter{Mine: true})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	page, err = f.tasks.List(f.ctx, f.admin, TaskFilter{AssignedTo: f.employee.ID, Status: workflow.TaskCompleted})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, a.ID, page.Data[0].ID)

	page, err = f.tasks.List(f.ctx, f.admin, TaskFilter{InvoiceItemID: itemID, TaskType: "printing"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Pagination.Total)

	_, err = f.tasks.List(f.ctx, f.admin, TaskFilter{Status: "Nope"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	stats, err := f.tasks.Stats(f.ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.ByStatus[workflow.TaskAssigned])
	assert.EqualValues(t, 1, stats.ByStatus[workflow.TaskCompleted])
	assert.EqualValues(t, 0, stats.ByStatus[workflow.TaskOnHold])

	stats, err = f.tasks.Stats(f.ctx, f.other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Total)
}
