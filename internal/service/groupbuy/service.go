// Package groupbuy lets shoppers pool orders for a product.
package groupbuy

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/notify"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
)

// GroupRepository interface for group persistence.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	List(ctx context.Context, status string) ([]models.Group, error)
	AddMember(ctx context.Context, groupID uint, member *models.GroupMember) (*models.Group, error)
	AddMessage(ctx context.Context, msg *models.GroupMessage) error
	ListMessages(ctx context.Context, groupID uint) ([]models.GroupMessage, error)
}

// ProductRepository interface for product lookups.
type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

// Item is a product and count a member brings to a group.
type Item struct {
	ProductID uint `json:"productId" binding:"required"`
	Count     int  `json:"count" binding:"required,min=1"`
}

// MaxMessageLength caps a group message in characters.
const MaxMessageLength = 2000

// Service manages group-buys.
type Service struct {
	groupRepo   GroupRepository
	productRepo ProductRepository
	notifier    notify.Notifier
	log         *logger.Logger
	now         func() time.Time
}

// NewService creates a new group-buy service with concrete repository types.
func NewService(groupRepo *repository.GroupRepository, productRepo *repository.ProductRepository, notifier notify.Notifier, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(groupRepo, productRepo, notifier, log)
}

// NewServiceWithInterfaces creates a new group-buy service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(groupRepo GroupRepository, productRepo ProductRepository, notifier notify.Notifier, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		groupRepo:   groupRepo,
		productRepo: productRepo,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create opens a pending group with the admin as its first member.
func (s *Service) Create(ctx context.Context, adminID uint, name string, productID uint, membersNeeded int) (*models.Group, error) {
	const op = "groupbuy.Create"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("group name is required"))
	}
	if membersNeeded < 2 {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("a group needs at least 2 members"))
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !product.GroupBuyEligible {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("product %d is not eligible for group buying", productID))
	}

	group := &models.Group{
		Code:          uuid.NewString(),
		Name:          name,
		AdminID:       adminID,
		ProductID:     product.ID,
		MembersNeeded: membersNeeded,
		Status:        models.GroupStatusPending,
		Members: []models.GroupMember{{
			UserID:   adminID,
			Items:    []models.GroupItem{{ProductID: product.ID, Count: 1}},
			JoinedAt: s.now(),
		}},
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Uint("group_id", group.ID).
		Uint("admin_id", adminID).
		Int("members_needed", membersNeeded).
		Msg("Group created")
	return group, nil
}

// Join adds the user to a pending group. Joining twice is a no-op; joining
// a complete group fails with errs.ErrGroupFull.
func (s *Service) Join(ctx context.Context, groupID, userID uint, items []Item) (*models.Group, error) {
	const op = "groupbuy.Join"

	before, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if before.HasMember(userID) {
		return before, nil
	}

	if len(items) == 0 {
		items = []Item{{ProductID: before.ProductID, Count: 1}}
	}
	member := &models.GroupMember{UserID: userID, JoinedAt: s.now()}
	for _, it := range items {
		if it.Count <= 0 {
			return nil, errs.E(errs.Validation, op, fmt.Errorf("item count must be positive"))
		}
		if _, err := s.productRepo.GetByID(ctx, it.ProductID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		member.Items = append(member.Items, models.GroupItem{ProductID: it.ProductID, Count: it.Count})
	}

	group, err := s.groupRepo.AddMember(ctx, groupID, member)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if before.Status != models.GroupStatusComplete && group.Status == models.GroupStatusComplete {
		metrics.RecordGroupCompleted()
		s.log.Info().Uint("group_id", group.ID).Int("members", len(group.Members)).Msg("Group complete")
		if err := s.notifier.AnnounceGroupComplete(ctx, group); err != nil {
			s.log.Warn().Err(err).Uint("group_id", group.ID).Msg("Failed to announce group completion")
		}
	}
	return group, nil
}

// Get returns a group with its members.
func (s *Service) Get(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("groupbuy.Get: %w", err)
	}
	return group, nil
}

// List returns groups, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]models.Group, error) {
	switch status {
	case "", models.GroupStatusPending, models.GroupStatusComplete:
	default:
		return nil, errs.E(errs.Validation, "groupbuy.List", fmt.Errorf("unknown status %q", status))
	}
	groups, err := s.groupRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("groupbuy.List: %w", err)
	}
	return groups, nil
}

// PostMessage adds a message to the group's chat. Only members may post.
func (s *Service) PostMessage(ctx context.Context, groupID, userID uint, content string) (*models.GroupMessage, error) {
	const op = "groupbuy.PostMessage"

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("message content is required"))
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("message exceeds %d characters", MaxMessageLength))
	}
	if err := s.requireMember(ctx, op, groupID, userID); err != nil {
		return nil, err
	}

	msg := &models.GroupMessage{GroupID: groupID, SenderID: userID, Content: content, SentAt: s.now()}
	if err := s.groupRepo.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug().Uint("group_id", groupID).Uint("sender_id", userID).Msg("Group message posted")
	return msg, nil
}

// Messages returns the group's chat history, oldest first. Only members may
// read it.
func (s *Service) Messages(ctx context.Context, groupID, userID uint) ([]models.GroupMessage, error) {
	const op = "groupbuy.Messages"

	if err := s.requireMember(ctx, op, groupID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.groupRepo.ListMessages(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return msgs, nil
}

func (s *Service) requireMember(ctx context.Context, op string, groupID, userID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !group.HasMember(userID) {
		return errs.E(errs.Forbidden, op, errs.ErrNotGroupMember)
	}
	return nil
}
