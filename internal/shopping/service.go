package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"matplan/internal/live"
	"matplan/internal/queue"
)

var (
	// ErrNoSelections is returned when a generation request names no recipes.
	ErrNoSelections = errors.New("at least one recipe must be selected")
	// ErrNotFailed is returned when retrying a list that has not failed.
	ErrNotFailed = errors.New("only failed lists can be retried")
	// ErrInvalidRequest marks generation requests rejected before dispatch.
	ErrInvalidRequest = errors.New("invalid generation request")
)

const maxTitleLength = 100

// Service coordinates list generation dispatch, collaborative mutations and
// live-update publishing.
type Service struct {
	repo   *Repository
	broker queue.Broker
	events *live.Publisher
	logger *zap.SugaredLogger
}

// NewService creates a new shopping list service.
func NewService(repo *Repository, broker queue.Broker, events *live.Publisher, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:   repo,
		broker: broker,
		events: events,
		logger: logger,
	}
}

// Generate validates a generation request, creates a pending list row and
// dispatches the generation job. Completion is observed through the live
// channel, not through this call. If the dispatch itself fails the pending
// row is removed again and the error is returned synchronously.
func (s *Service) Generate(ctx context.Context, householdID, title string, selections []Selection) (*List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidRequest)
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, fmt.Errorf("%w: title must be at most %d characters", ErrInvalidRequest, maxTitleLength)
	}
	if len(selections) == 0 {
		return nil, ErrNoSelections
	}
	for i, sel := range selections {
		if sel.RecipeID == "" {
			return nil, fmt.Errorf("%w: selection %d: recipe id must not be empty", ErrInvalidRequest, i)
		}
		if sel.Servings <= 0 {
			return nil, fmt.Errorf("%w: selection %d: servings must be positive", ErrInvalidRequest, i)
		}
	}

	l, err := s.repo.Create(ctx, householdID, title, selections)
	if err != nil {
		return nil, err
	}

	msg := GenerationMessage{
		ListID:      l.ID,
		HouseholdID: householdID,
		Title:       title,
		Selections:  selections,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation message: %w", err)
	}

	if err := s.broker.Publish(ctx, queue.QueueListGeneration, payload); err != nil {
		if delErr := s.repo.Delete(ctx, l.ID, householdID); delErr != nil {
			s.logger.Errorw("failed to remove orphaned pending list", "list_id", l.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to dispatch generation job: %w", err)
	}

	s.logger.Infow("generation job dispatched", "list_id", l.ID, "recipes", len(selections))
	return l, nil
}

// Retry re-dispatches generation for a failed list, reusing the selections
// recorded when the list was created.
func (s *Service) Retry(ctx context.Context, id, householdID string) (*List, error) {
	l, err := s.Get(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusFailed {
		return nil, ErrNotFailed
	}
	if len(l.Selections) == 0 {
		return nil, ErrNoSelections
	}

	if err := s.repo.SetPending(ctx, id); err != nil {
		return nil, err
	}

	msg := GenerationMessage{
		ListID:      l.ID,
		HouseholdID: householdID,
		Title:       l.Title,
		Selections:  l.Selections,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation message: %w", err)
	}
	if err := s.broker.Publish(ctx, queue.QueueListGeneration, payload); err != nil {
		if failErr := s.repo.SetFailed(ctx, id, "failed to dispatch retry"); failErr != nil {
			s.logger.Errorw("failed to mark list failed after dispatch error", "list_id", id, "error", failErr)
		}
		return nil, fmt.Errorf("failed to dispatch generation job: %w", err)
	}

	l.Status = StatusPending
	l.Error = ""
	return l, nil
}

// Get retrieves a list owned by the household.
func (s *Service) Get(ctx context.Context, id, householdID string) (*List, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.HouseholdID != householdID {
		return nil, ErrNotFound
	}
	return l, nil
}

// GetByToken retrieves a list through its share token.
func (s *Service) GetByToken(ctx context.Context, token string) (*List, error) {
	return s.repo.GetByToken(ctx, token)
}

// ListByHousehold retrieves the household's lists.
func (s *Service) ListByHousehold(ctx context.Context, householdID string) ([]List, error) {
	return s.repo.ListByHousehold(ctx, householdID)
}

// Delete removes a list owned by the household.
func (s *Service) Delete(ctx context.Context, id, householdID string) error {
	return s.repo.Delete(ctx, id, householdID)
}

// Share enables anonymous access to the list and returns the share token.
func (s *Service) Share(ctx context.Context, id, householdID string) (string, error) {
	return s.repo.EnableSharing(ctx, id, householdID)
}

// Revoke clears the list's share token.
func (s *Service) Revoke(ctx context.Context, id, householdID string) error {
	if err := s.repo.RevokeSharing(ctx, id, householdID); err != nil {
		return err
	}
	s.publishChange(ctx, id, string(StatusReady), nil)
	return nil
}

// Toggle flips the checked state of the item string on the addressed list.
func (s *Service) Toggle(ctx context.Context, key Key, item string) (*List, error) {
	return s.mutate(ctx, key, func(doc Document) (Document, error) {
		return Toggle(doc, item), nil
	})
}

// EditItem replaces the item at the given category position.
func (s *Service) EditItem(ctx context.Context, key Key, category string, index int, value string) (*List, error) {
	return s.mutate(ctx, key, func(doc Document) (Document, error) {
		return Edit(doc, category, index, value)
	})
}

// AddItem appends an item to the named category.
func (s *Service) AddItem(ctx context.Context, key Key, category, item string) (*List, error) {
	return s.mutate(ctx, key, func(doc Document) (Document, error) {
		return Add(doc, category, item)
	})
}

// RemoveItem deletes the item at the given category position.
func (s *Service) RemoveItem(ctx context.Context, key Key, category string, index int) (*List, error) {
	return s.mutate(ctx, key, func(doc Document) (Document, error) {
		return Remove(doc, category, index)
	})
}

func (s *Service) mutate(ctx context.Context, key Key, fn func(Document) (Document, error)) (*List, error) {
	l, err := s.repo.Mutate(ctx, key, fn)
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, l.ID, string(l.Status), l.Document)
	return l, nil
}

func (s *Service) publishChange(ctx context.Context, listID, status string, doc *Document) {
	if s.events == nil {
		return
	}
	var payload any
	if doc != nil {
		payload = doc
	}
	if err := s.events.PublishChange(ctx, listID, status, payload); err != nil {
		s.logger.Errorw("failed to publish live update", "list_id", listID, "error", err)
	}
}
