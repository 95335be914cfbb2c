// Package storage provides repository implementations for deskmatter data models.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity interface that all models with a string primary key implement
type Entity interface {
	TableName() string
}

// Repository provides generic CRUD operations for any entity keyed by "id".
type Repository[T Entity] struct {
	db        *gorm.DB
	tableName string
	order     string
}

// NewRepository creates a new repository for type T. order is the ORDER BY
// clause used by GetAll.
func NewRepository[T Entity](db *gorm.DB, order string) *Repository[T] {
	var zero T
	return &Repository[T]{
		db:        db,
		tableName: zero.TableName(),
		order:     order,
	}
}

// Create inserts a new entity into the database.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.tableName, err)
	}

	log.Debug().Str("table", r.tableName).Msg("Entity created")
	return nil
}

// GetByID retrieves an entity by its ID. Returns ErrNotFound when absent.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", r.tableName, id, err)
	}
	return &entity, nil
}

// GetAll retrieves all entities.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Where(ctx, "")
}

// Where retrieves entities matching condition, in repository order.
// An empty condition matches every row.
func (r *Repository[T]) Where(ctx context.Context, condition string, args ...interface{}) ([]T, error) {
	entities := make([]T, 0)
	query := r.db.WithContext(ctx).Order(r.order)
	if condition != "" {
		query = query.Where(condition, args...)
	}
	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.tableName, err)
	}
	return entities, nil
}

// Update overwrites every column of the entity identified by id except
// created_at. Returns ErrNotFound when no row has that id.
func (r *Repository[T]) Update(ctx context.Context, id string, entity *T) error {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(entity)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s %s: %w", r.tableName, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entity by ID. Deleting a missing entity is not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", r.tableName, id, err)
	}
	return nil
}

// Count counts entities matching condition.
func (r *Repository[T]) Count(ctx context.Context, condition string, args ...interface{}) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(new(T))
	if condition != "" {
		query = query.Where(condition, args...)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.tableName, err)
	}
	return count, nil
}

// MatterRepository is the store contract for matters.
type MatterRepository interface {
	Create(ctx context.Context, matter *Matter) error
	GetByID(ctx context.Context, id string) (*Matter, error)
	GetAll(ctx context.Context) ([]Matter, error)
	Update(ctx context.Context, id string, matter *Matter) error
	Delete(ctx context.Context, id string) error
	// GetByTimeRange returns matters whose [start_time, end_time] overlaps [start, end].
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]Matter, error)
	// QueryByField filters on a single column. field must already be validated
	// against MatterQueryFields. A non-exact match is a case-insensitive
	// substring match on every driver.
	QueryByField(ctx context.Context, field, value string, exactMatch bool) ([]Matter, error)
	// CountForRepeatTask counts matters created from taskID starting in [start, end).
	CountForRepeatTask(ctx context.Context, taskID string, start, end time.Time) (int64, error)
}

type matterRepository struct {
	*Repository[Matter]
}

func (r *matterRepository) GetByTimeRange(ctx context.Context, start, end time.Time) ([]Matter, error) {
	return r.Where(ctx, "start_time <= ? AND end_time >= ?", end.UTC(), start.UTC())
}

func (r *matterRepository) QueryByField(ctx context.Context, field, value string, exactMatch bool) ([]Matter, error) {
	if !IsMatterQueryField(field) {
		return nil, fmt.Errorf("invalid matter field: %s", field)
	}

	column := clause.Column{Name: field}
	if exactMatch {
		return r.Where(ctx, "? = ?", column, value)
	}
	return r.Where(ctx, `LOWER(CAST(? AS TEXT)) LIKE LOWER(?) ESCAPE '\'`, column, "%"+escapeLike(value)+"%")
}

func (r *matterRepository) CountForRepeatTask(ctx context.Context, taskID string, start, end time.Time) (int64, error) {
	return r.Count(ctx, "reserved_2 = ? AND start_time >= ? AND start_time < ?", taskID, start.UTC(), end.UTC())
}

// escapeLike escapes LIKE wildcards so value is matched literally.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
}

// KVRepository is the store contract for key/value settings.
type KVRepository interface {
	// Get returns the stored value or def when the key is absent.
	Get(ctx context.Context, key, def string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type kvRepository struct {
	db *gorm.DB
}

func (r *kvRepository) Get(ctx context.Context, key, def string) (string, error) {
	var entry KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get kv %s: %w", key, err)
	}
	return entry.Value, nil
}

func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set kv %s: %w", key, err)
	}
	return nil
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete kv %s: %w", key, err)
	}
	return nil
}

// TagRepository is the store contract for tags.
type TagRepository interface {
	// Create inserts the tag; creating an existing tag is a no-op.
	Create(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	// GetAll returns non-empty tags ordered by last use, newest first.
	GetAll(ctx context.Context) ([]Tag, error)
	UpdateLastUsedAt(ctx context.Context, name string) error
}

type tagRepository struct {
	db *gorm.DB
}

func (r *tagRepository) Create(ctx context.Context, name string) error {
	now := time.Now().UTC()
	tag := Tag{Name: name, CreatedAt: now, LastUsedAt: now}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("name = ?", name).Delete(&Tag{}).Error; err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}
	return nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]Tag, error) {
	tags := make([]Tag, 0)
	err := r.db.WithContext(ctx).
		Where("name <> ?", "").
		Order("last_used_at DESC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) UpdateLastUsedAt(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).
		Model(&Tag{}).
		Where("name = ?", name).
		Update("last_used_at", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to touch tag %s: %w", name, err)
	}
	return nil
}

// RepeatTaskRepository is the store contract for repeat tasks.
type RepeatTaskRepository interface {
	Create(ctx context.Context, task *RepeatTask) error
	GetByID(ctx context.Context, id string) (*RepeatTask, error)
	GetAll(ctx context.Context) ([]RepeatTask, error)
	Update(ctx context.Context, id string, task *RepeatTask) error
	Delete(ctx context.Context, id string) error
	GetActive(ctx context.Context) ([]RepeatTask, error)
	UpdateStatus(ctx context.Context, id string, status int) error
}

type repeatTaskRepository struct {
	*Repository[RepeatTask]
}

func (r *repeatTaskRepository) GetActive(ctx context.Context) ([]RepeatTask, error) {
	return r.Where(ctx, "status = ?", RepeatTaskStatusActive)
}

func (r *repeatTaskRepository) UpdateStatus(ctx context.Context, id string, status int) error {
	result := r.db.WithContext(ctx).
		Model(&RepeatTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to update repeat task %s status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TodoRepository is the store contract for todos.
type TodoRepository interface {
	Create(ctx context.Context, todo *Todo) error
	GetByID(ctx context.Context, id string) (*Todo, error)
	GetAll(ctx context.Context) ([]Todo, error)
	Update(ctx context.Context, id string, todo *Todo) error
	Delete(ctx context.Context, id string) error
}

type todoRepository struct {
	*Repository[Todo]
}

// NotificationRepository is the store contract for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *NotificationRecord) error
	GetByID(ctx context.Context, id string) (*NotificationRecord, error)
	GetAll(ctx context.Context) ([]NotificationRecord, error)
	Update(ctx context.Context, id string, notification *NotificationRecord) error
	Delete(ctx context.Context, id string) error
	GetUnread(ctx context.Context) ([]NotificationRecord, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAsReadByType(ctx context.Context, notificationType int) error
	MarkAllAsRead(ctx context.Context) error
}

type notificationRepository struct {
	*Repository[NotificationRecord]
}

func (r *notificationRepository) GetUnread(ctx context.Context) ([]NotificationRecord, error) {
	return r.Where(ctx, "status = ?", NotificationStatusUnread)
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id string) error {
	result := r.markRead(ctx, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		// Either missing or already read; only the former is an error.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) MarkAsReadByType(ctx context.Context, notificationType int) error {
	if err := r.markRead(ctx, "type = ?", notificationType).Error; err != nil {
		return fmt.Errorf("failed to mark notifications of type %d read: %w", notificationType, err)
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context) error {
	if err := r.markRead(ctx, "1 = 1").Error; err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) markRead(ctx context.Context, condition string, args ...interface{}) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&NotificationRecord{}).
		Where("status = ?", NotificationStatusUnread).
		Where(condition, args...).
		Updates(map[string]interface{}{
			"status":  NotificationStatusRead,
			"read_at": time.Now().UTC(),
		})
}
