// Package chat routes free-text shopper messages to the storefront's data or
// to an open-ended assistant reply.
package chat

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/amazongreen/storefront/internal/completion"
	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/internal/service/catalog"
	"github.com/amazongreen/storefront/internal/service/challenges"
	"github.com/amazongreen/storefront/pkg/logger"
)

// UserRepository interface for loading user documents.
type UserRepository interface {
	GetDocument(ctx context.Context, id uint) (*models.User, error)
}

// ProductFinder finds greener products.
type ProductFinder interface {
	HigherEcoInCategory(ctx context.Context, category string, minEcoScore float64) ([]models.Product, error)
}

// ChallengeStatuser reports a user's challenge progress.
type ChallengeStatuser interface {
	StatusOf(ctx context.Context, user *models.User) (*challenges.Status, error)
}

// Request is an incoming chat message.
type Request struct {
	Message string
	UserID  uint
}

// ItemFootprint is one line of an order's footprint.
type ItemFootprint struct {
	Name            string  `json:"name"`
	CarbonFootprint float64 `json:"carbonFootprint"`
}

// OrderFootprint is one order's share of the monthly footprint.
type OrderFootprint struct {
	Date     time.Time       `json:"date"`
	Items    []ItemFootprint `json:"items"`
	Subtotal float64         `json:"subtotal"`
}

// Response is the routed answer. Which extras are set depends on Intent.
type Response struct {
	Reply      string                       `json:"reply"`
	Intent     Intent                       `json:"intent"`
	Breakdown  []OrderFootprint             `json:"breakdown"`
	Total      float64                      `json:"total"`
	Challenges []challenges.ChallengeStatus `json:"challenges,omitempty"`
	Badges     []models.UserBadge           `json:"badges,omitempty"`
}

// Service classifies and answers chat messages.
type Service struct {
	userRepo   UserRepository
	products   ProductFinder
	challenges ChallengeStatuser
	completer  completion.Completer
	location   *time.Location
	log        *logger.Logger
	now        func() time.Time
}

// NewService creates a chat service with concrete dependencies.
func NewService(
	userRepo *repository.UserRepository,
	products *catalog.Service,
	challengeSvc *challenges.Service,
	completer completion.Completer,
	loc *time.Location,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, products, challengeSvc, completer, loc, log)
}

// NewServiceWithInterfaces creates a chat service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	products ProductFinder,
	challengeSvc ChallengeStatuser,
	completer completion.Completer,
	loc *time.Location,
	log *logger.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		userRepo:   userRepo,
		products:   products,
		challenges: challengeSvc,
		completer:  completer,
		location:   loc,
		log:        log,
		now:        time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Classify asks the completion service for the message's intent.
func (s *Service) Classify(ctx context.Context, message string) (Intent, error) {
	text, err := s.completer.Complete(ctx, completion.Request{
		Prompt:      classifyPrompt(message),
		MaxTokens:   5,
		Temperature: 0,
		Stop:        []string{"\n"},
	})
	if err != nil {
		return "", fmt.Errorf("chat.Classify: %w", err)
	}
	return ParseIntent(text), nil
}

// Handle classifies the message and dispatches it.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	const op = "chat.Handle"

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errs.E(errs.Validation, op, fmt.Errorf("message is required"))
	}

	intent, err := s.Classify(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordChatIntent(string(intent))
	s.log.Debug().Str("intent", string(intent)).Uint("user_id", req.UserID).Msg("Classified chat message")

	if intent == IntentChat {
		return s.converse(ctx, message)
	}

	if req.UserID == 0 {
		return nil, errs.E(errs.Validation, op, errs.ErrMissingUserID)
	}
	user, err := s.userRepo.GetDocument(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch intent {
	case IntentCartAlternative:
		return s.cartAlternative(ctx, user)
	case IntentCarbonFootprint:
		return s.carbonFootprint(user), nil
	default:
		return s.myChallenges(ctx, user)
	}
}

func (s *Service) converse(ctx context.Context, message string) (*Response, error) {
	reply, err := s.completer.Complete(ctx, completion.Request{
		Prompt:      personaPrompt(message),
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("chat.converse: %w", err)
	}
	return &Response{Reply: strings.TrimSpace(reply), Intent: IntentChat}, nil
}

func (s *Service) cartAlternative(ctx context.Context, user *models.User) (*Response, error) {
	resp := &Response{Intent: IntentCartAlternative}

	latest := user.LatestOrder()
	if latest == nil || len(latest.Items) == 0 {
		resp.Reply = "You have no recent orders yet. Once you buy something I can suggest greener alternatives."
		return resp, nil
	}

	item := latest.Items[0]
	better, err := s.products.HigherEcoInCategory(ctx, item.Category, item.EcoScore)
	if err != nil {
		return nil, fmt.Errorf("chat.cartAlternative: %w", err)
	}
	if len(better) == 0 {
		resp.Reply = fmt.Sprintf("Great choice! %s is already the most eco-friendly option in %s.", item.Name, item.Category)
		return resp, nil
	}

	best := better[0]
	resp.Reply = fmt.Sprintf("Instead of %s (eco score %.0f), try %s with an eco score of %.0f.",
		item.Name, item.EcoScore, best.Name, best.EcoScore)
	return resp, nil
}

func (s *Service) carbonFootprint(user *models.User) *Response {
	local := s.now().In(s.location)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 1, 0)

	resp := &Response{Intent: IntentCarbonFootprint, Breakdown: []OrderFootprint{}}
	for _, o := range user.Orders {
		placed := o.PlacedAt.In(s.location)
		if placed.Before(start) || !placed.Before(end) {
			continue
		}
		of := OrderFootprint{Date: o.PlacedAt, Items: make([]ItemFootprint, 0, len(o.Items))}
		for _, it := range o.Items {
			of.Items = append(of.Items, ItemFootprint{Name: it.Name, CarbonFootprint: it.CarbonFootprint})
			of.Subtotal += it.CarbonFootprint
		}
		resp.Breakdown = append(resp.Breakdown, of)
		resp.Total += of.Subtotal
	}

	if len(resp.Breakdown) == 0 {
		resp.Reply = "You have no orders this month, so your carbon footprint is 0 kg CO2."
		return resp
	}
	resp.Reply = fmt.Sprintf("Your purchases this month add up to %.2f kg CO2 across %d orders.",
		math.Round(resp.Total*100)/100, len(resp.Breakdown))
	return resp
}

func (s *Service) myChallenges(ctx context.Context, user *models.User) (*Response, error) {
	status, err := s.challenges.StatusOf(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("chat.myChallenges: %w", err)
	}

	completed := 0
	for _, c := range status.Challenges {
		if c.Completed {
			completed++
		}
	}

	resp := &Response{
		Intent:     IntentMyChallenges,
		Challenges: status.Challenges,
		Badges:     status.Badges,
	}
	if len(status.Challenges) == 0 {
		resp.Reply = "You haven't joined any challenges yet. Check the Eco Challenges page to get started!"
	} else {
		resp.Reply = fmt.Sprintf("You're in %d challenges and have completed %d. You hold %d badges.",
			len(status.Challenges), completed, len(status.Badges))
	}
	return resp, nil
}
