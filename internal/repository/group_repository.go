package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
)

// GroupRepository handles group-buy database operations.
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group together with its initial members.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return errs.E(errs.Persistence, "groups.Create", err)
	}
	return nil
}

// GetByID retrieves a group with members and their items.
func (r *GroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC, id ASC") }).
		Preload("Members.Items").
		First(&group, id).Error
	if err != nil {
		return nil, translate(fmt.Sprintf("groups.GetByID(%d)", id), err, errs.ErrGroupNotFound)
	}
	return &group, nil
}

// List returns groups, newest first, optionally filtered by status.
func (r *GroupRepository) List(ctx context.Context, status string) ([]models.Group, error) {
	query := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.Items").
		Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var groups []models.Group
	if err := query.Find(&groups).Error; err != nil {
		return nil, errs.E(errs.Persistence, "groups.List", err)
	}
	return groups, nil
}

// AddMember appends a member under a row lock and marks the group complete
// once enough members have joined. It returns the updated group.
func (r *GroupRepository) AddMember(ctx context.Context, groupID uint, member *models.GroupMember) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Members").
			First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrGroupNotFound
			}
			return err
		}
		if group.HasMember(member.UserID) {
			return nil
		}
		if group.Status == models.GroupStatusComplete || group.Pending() == 0 {
			return errs.ErrGroupFull
		}

		member.GroupID = group.ID
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		group.Members = append(group.Members, *member)

		if group.Pending() == 0 {
			group.Status = models.GroupStatusComplete
			if err := tx.Model(&group).Update("status", group.Status).Error; err != nil {
				return fmt.Errorf("failed to complete group: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		op := fmt.Sprintf("groups.AddMember(%d)", groupID)
		switch {
		case errors.Is(err, errs.ErrGroupNotFound):
			return nil, errs.E(errs.NotFound, op, err)
		case errors.Is(err, errs.ErrGroupFull):
			return nil, errs.E(errs.Conflict, op, err)
		default:
			return nil, errs.E(errs.Persistence, op, err)
		}
	}
	return &group, nil
}

// AddMessage stores a group message and fills in the sender's name.
func (r *GroupRepository) AddMessage(ctx context.Context, msg *models.GroupMessage) error {
	const op = "groups.AddMessage"
	db := r.db.WithContext(ctx)
	if err := db.Create(msg).Error; err != nil {
		return errs.E(errs.Persistence, op, err)
	}
	if err := db.Model(&models.User{}).Select("name").Where("id = ?", msg.SenderID).Scan(&msg.SenderName).Error; err != nil {
		return errs.E(errs.Persistence, op, err)
	}
	return nil
}

// ListMessages returns a group's messages, oldest first, with sender names.
func (r *GroupRepository) ListMessages(ctx context.Context, groupID uint) ([]models.GroupMessage, error) {
	var msgs []models.GroupMessage
	err := r.db.WithContext(ctx).
		Model(&models.GroupMessage{}).
		Select("group_messages.*, users.name AS sender_name").
		Joins("LEFT JOIN users ON users.id = group_messages.sender_id").
		Where("group_messages.group_id = ?", groupID).
		Order("group_messages.sent_at ASC, group_messages.id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, fmt.Sprintf("groups.ListMessages(%d)", groupID), err)
	}
	return msgs, nil
}
