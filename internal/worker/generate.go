package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"matplan/internal/household"
	"matplan/internal/live"
	"matplan/internal/queue"
	"matplan/internal/recipe"
	"matplan/internal/shopping"
)

// Generator consumes list-generation jobs: it scales and merges the selected
// recipes' ingredients into a categorized document and stores the result.
type Generator struct {
	lists      *shopping.Repository
	recipes    *recipe.Repository
	households *household.Repository
	broker     queue.Broker
	events     *live.Publisher
	logger     *zap.SugaredLogger
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewGenerator creates a new generation worker.
func NewGenerator(
	lists *shopping.Repository,
	recipes *recipe.Repository,
	households *household.Repository,
	broker queue.Broker,
	events *live.Publisher,
	logger *zap.SugaredLogger,
) *Generator {
	ctx, cancel := context.WithCancel(context.Background())

	return &Generator{
		lists:      lists,
		recipes:    recipes,
		households: households,
		broker:     broker,
		events:     events,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes the worker to the generation queue.
func (g *Generator) Start() error {
	g.logger.Info("starting list generation worker")
	return g.broker.Subscribe(g.ctx, queue.QueueListGeneration, g.handleMessage)
}

// Stop cancels the worker's consumer loop.
func (g *Generator) Stop() {
	g.logger.Info("stopping list generation worker")
	g.cancel()
}

func (g *Generator) handleMessage(ctx context.Context, message []byte) error {
	var msg shopping.GenerationMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		g.logger.Errorw("failed to unmarshal generation message", "error", err)
		return fmt.Errorf("failed to unmarshal generation message: %w", err)
	}

	g.logger.Infow("processing generation job", "list_id", msg.ListID)

	if err := g.generate(ctx, msg); err != nil {
		g.fail(ctx, msg.ListID, err)
		// The failure is recorded on the row; do not requeue.
		return nil
	}

	return nil
}

func (g *Generator) generate(ctx context.Context, msg shopping.GenerationMessage) error {
	h, err := g.households.Get(ctx, msg.HouseholdID)
	if err != nil {
		return fmt.Errorf("failed to load household: %w", err)
	}

	inputs := make([]shopping.RecipeInput, 0, len(msg.Selections))
	for _, sel := range msg.Selections {
		rec, err := g.lookupRecipe(ctx, sel, msg.HouseholdID)
		if err != nil {
			if errors.Is(err, recipe.ErrNotFound) {
				g.logger.Warnw("selected recipe not found, skipping", "list_id", msg.ListID, "recipe_id", sel.RecipeID)
				continue
			}
			return fmt.Errorf("failed to load recipe %s: %w", sel.RecipeID, err)
		}

		target := sel.Servings
		if target <= 0 {
			target = float64(h.DefaultServings)
		}

		inputs = append(inputs, shopping.RecipeInput{
			Title:            rec.Title,
			BaselineServings: rec.Servings,
			TargetServings:   target,
			Ingredients:      rec.Ingredients,
		})
	}

	if len(inputs) == 0 {
		return fmt.Errorf("none of the selected recipes exist")
	}

	doc := shopping.Aggregate(inputs, h.Categories)

	if err := g.lists.SetDocument(ctx, msg.ListID, &doc); err != nil {
		return fmt.Errorf("failed to store generated list: %w", err)
	}

	g.publish(ctx, msg.ListID, string(shopping.StatusReady), &doc)
	g.logger.Infow("generation job completed", "list_id", msg.ListID, "categories", len(doc.Categories))
	return nil
}

// lookupRecipe resolves a selection within its table: system selections hit
// the shared catalog, everything else stays scoped to the requesting
// household. A bare UUID cannot reach another household's recipe.
func (g *Generator) lookupRecipe(ctx context.Context, sel shopping.Selection, householdID string) (*recipe.Recipe, error) {
	if sel.Table == "system" {
		return g.recipes.GetSystem(ctx, sel.RecipeID)
	}
	return g.recipes.GetForHousehold(ctx, sel.RecipeID, householdID)
}

func (g *Generator) fail(ctx context.Context, listID string, cause error) {
	g.logger.Errorw("generation job failed", "list_id", listID, "error", cause)

	if err := g.lists.SetFailed(ctx, listID, cause.Error()); err != nil {
		g.logger.Errorw("failed to mark list failed", "list_id", listID, "error", err)
		return
	}
	g.publish(ctx, listID, string(shopping.StatusFailed), nil)
}

func (g *Generator) publish(ctx context.Context, listID, status string, doc *shopping.Document) {
	if g.events == nil {
		return
	}
	var payload any
	if doc != nil {
		payload = doc
	}
	if err := g.events.PublishChange(ctx, listID, status, payload); err != nil {
		g.logger.Errorw("failed to publish live update", "list_id", listID, "error", err)
	}
}
