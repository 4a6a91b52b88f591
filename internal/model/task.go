package model

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Task is an item on the shop floor's daily task list.
type Task struct {
	BaseModel
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Assignee    *string    `gorm:"type:varchar(255)" json:"assignee"`
	Date        string     `gorm:"column:task_date;type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD, UTC
}

func (Task) TableName() string {
	return "tasks"
}
