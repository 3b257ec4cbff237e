package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tapforge/clicker-server/internal/dependencies/clock"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

// Controller drives batch reconciliation through the store's serialized
// read-modify-write primitive. It holds no state of its own beyond static
// configuration; all concurrency control lives at the storage boundary.
type Controller struct {
	storage storage.Storage
	catalog model.Catalog
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new game controller
func NewController(storage storage.Storage, catalog model.Catalog, clock clock.Clock, cfg Config, logger *slog.Logger) *Controller {
	if cfg.ClickRate <= 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		storage: storage,
		catalog: catalog,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// SubmitActions applies one client batch for the player identified by the
// bearer token and returns the updated record. The whole batch succeeds or
// the stored record is left untouched.
func (c *Controller) SubmitActions(ctx context.Context, token string, batch []model.Action) (*model.Player, error) {
	now := c.clock.Now()

	updated, err := c.storage.UpdatePlayerByToken(ctx, token, func(p *model.Player) error {
		return Reconcile(p, batch, now, c.catalog, c.cfg)
	})
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrInvalidToken
		}
		return nil, err
	}

	c.logger.Info("action batch applied",
		slog.String("player_id", string(updated.ID)),
		slog.Int("actions", len(batch)),
		slog.Int64("score", updated.Score),
		slog.Int64("sps", updated.Sps),
	)
	return updated, nil
}

// PlayerState returns the record identified by token or, failing that, by
// display name, with passive income projected at read time. Nothing is
// persisted; the next action batch accrues the same amount from the stored
// LastUpdated.
func (c *Controller) PlayerState(ctx context.Context, ref string) (*model.Player, error) {
	p, err := c.storage.GetPlayerByToken(ctx, ref)
	if errors.Is(err, model.ErrPlayerNotFound) {
		p, err = c.storage.GetPlayerByName(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	elapsed := c.clock.Now().UTC().Sub(p.LastUpdated.UTC()).Seconds()
	if elapsed > 0 {
		p.Score += int64(float64(p.Sps) * elapsed)
	}
	return p, nil
}

// Catalog returns the process-wide upgrade catalog
func (c *Controller) Catalog() model.Catalog {
	return c.catalog
}
