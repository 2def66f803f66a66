// Package workflow derives an invoice item's completion rollup from the
// statuses of the tasks assigned against it.
package workflow

import "math"

type TaskStatus string

const (
	TaskAssigned   TaskStatus = "Assigned"
	TaskInProgress TaskStatus = "In Progress"
	TaskOnHold     TaskStatus = "On Hold"
	TaskCompleted  TaskStatus = "Completed"
	TaskCancelled  TaskStatus = "Cancelled"
)

var TaskStatuses = []TaskStatus{TaskAssigned, TaskInProgress, TaskOnHold, TaskCompleted, TaskCancelled}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type ItemStatus string

const (
	ItemNotStarted ItemStatus = "Not Started"
	ItemInProgress ItemStatus = "In Progress"
	ItemOnHold     ItemStatus = "On Hold"
	ItemCompleted  ItemStatus = "Completed"
)

// Rollup is the derived completion state of one invoice item.
type Rollup struct {
	OverallStatus ItemStatus `json:"overallStatus"`
	TaskProgress  int        `json:"taskProgress"`
}

// Derive rebuilds the rollup from scratch out of the statuses of every
// live task on the item. Cancelled tasks still count towards the total.
func Derive(statuses []TaskStatus) Rollup {
	total := len(statuses)
	if total == 0 {
		return Rollup{OverallStatus: ItemNotStarted, TaskProgress: 0}
	}

	var completed, inProgress, onHold int
	for _, s := range statuses {
		switch s {
		case TaskCompleted:
			completed++
		case TaskInProgress:
			inProgress++
		case TaskOnHold:
			onHold++
		}
	}

	progress := percent(completed, total)
	switch {
	case completed == total:
		return Rollup{OverallStatus: ItemCompleted, TaskProgress: 100}
	case completed > 0 || inProgress > 0:
		return Rollup{OverallStatus: ItemInProgress, TaskProgress: progress}
	case onHold > 0:
		// completed is 0 here, so progress is always 0.
		return Rollup{OverallStatus: ItemOnHold, TaskProgress: progress}
	default:
		return Rollup{OverallStatus: ItemNotStarted, TaskProgress: 0}
	}
}

func percent(part, total int) int {
	return int(math.Round(100 * float64(part) / float64(total)))
}
