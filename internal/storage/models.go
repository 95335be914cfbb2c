// Package storage defines the data models persisted by deskmatter.
//
// All models are plain GORM structs. Identifiers are client- or
// server-generated UUID strings, timestamps are stored in UTC.
package storage

import (
	"time"
)

// Matter types.
const (
	MatterTypeNormal   = 0
	MatterTypeRepeat   = 1 // materialized from a repeat task
	MatterTypeTodo     = 2
	MatterTypeCalendar = 3 // imported from the OS calendar
)

// Priorities shared by matters, todos and repeat tasks.
const (
	PriorityLow    = 0
	PriorityMedium = 1
	PriorityHigh   = 2
)

// Repeat task statuses.
const (
	RepeatTaskStatusInactive = 0
	RepeatTaskStatusActive   = 1
)

// Todo statuses.
const (
	TodoStatusOpen = 0
	TodoStatusDone = 1
)

// Notification statuses.
const (
	NotificationStatusUnread = 0
	NotificationStatusRead   = 1
)

// Matter is the primary tracked item: something with a title and a time window.
type Matter struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Tags        string    `gorm:"column:tags" json:"tags"`
	StartTime   time.Time `gorm:"column:start_time;index" json:"start_time"`
	EndTime     time.Time `gorm:"column:end_time;index" json:"end_time"`
	Priority    int       `gorm:"column:priority" json:"priority"`
	Type        int       `gorm:"column:type" json:"type_"`
	SubType     int       `gorm:"column:sub_type" json:"sub_type"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Reserved columns are free-form extension slots used by the desktop
	// client (reserved_1 carries a colour, reserved_2 a repeat task id).
	Reserved1 string `gorm:"column:reserved_1" json:"reserved_1"`
	Reserved2 string `gorm:"column:reserved_2;index" json:"reserved_2"`
	Reserved3 string `gorm:"column:reserved_3" json:"reserved_3"`
	Reserved4 string `gorm:"column:reserved_4" json:"reserved_4"`
	Reserved5 string `gorm:"column:reserved_5" json:"reserved_5"`
}

func (Matter) TableName() string { return "matter" }

// KVEntry is a single key/value setting.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;column:key" json:"key"`
	Value     string    `gorm:"column:value" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_store" }

// Tag is a label attached to matters; names are unique.
type Tag struct {
	Name       string    `gorm:"primaryKey;column:name" json:"name"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	LastUsedAt time.Time `gorm:"column:last_used_at;index" json:"last_used_at"`
}

func (Tag) TableName() string { return "tags" }

// RepeatTask describes a recurring matter.
//
// RepeatTime has the form "rule|HH:MM|HH:MM", see ParseRepeatTime.
type RepeatTask struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Tags        string    `gorm:"column:tags" json:"tags"`
	RepeatTime  string    `gorm:"column:repeat_time" json:"repeat_time"`
	Status      int       `gorm:"column:status;index" json:"status"`
	Priority    int       `gorm:"column:priority" json:"priority"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (RepeatTask) TableName() string { return "repeat_task" }

// Todo is a checklist entry.
type Todo struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Status    int       `gorm:"column:status" json:"status"`
	Priority  int       `gorm:"column:priority" json:"priority"`
	Tags      string    `gorm:"column:tags" json:"tags"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Todo) TableName() string { return "todo" }

// NotificationRecord is an in-app notification.
type NotificationRecord struct {
	ID        string     `gorm:"primaryKey;column:id" json:"id"`
	Title     string     `gorm:"column:title" json:"title"`
	Content   string     `gorm:"column:content" json:"content"`
	Type      int        `gorm:"column:type;index" json:"type_"`
	Status    int        `gorm:"column:status;index" json:"status"`
	Metadata  string     `gorm:"column:metadata" json:"metadata"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at"`
}

func (NotificationRecord) TableName() string { return "notification" }

// allModels lists every model for auto-migration.
func allModels() []interface{} {
	return []interface{}{
		&Matter{},
		&KVEntry{},
		&Tag{},
		&RepeatTask{},
		&Todo{},
		&NotificationRecord{},
	}
}
