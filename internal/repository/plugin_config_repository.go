package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/forum-submission-api/internal/models"
)

const pluginConfigUpsert = `INSERT INTO assign_plugin_config (assignment, plugin, subtype, name, value)
VALUES (:assignment, :plugin, :subtype, :name, :value)
ON CONFLICT (assignment, plugin, subtype, name)
DO UPDATE SET value = EXCLUDED.value`

// PluginConfigRepository persists per-assignment plugin settings.
type PluginConfigRepository struct {
	db *sqlx.DB
}

// NewPluginConfigRepository constructs the repository.
func NewPluginConfigRepository(db *sqlx.DB) *PluginConfigRepository {
	return &PluginConfigRepository{db: db}
}

// Get fetches one setting of the forum plugin. Missing rows return sql.ErrNoRows.
func (r *PluginConfigRepository) Get(ctx context.Context, assignmentID int64, name string) (*models.PluginConfig, error) {
	const query = `SELECT id, assignment, plugin, subtype, name, value FROM assign_plugin_config
WHERE assignment = $1 AND plugin = $2 AND subtype = $3 AND name = $4`
	var cfg models.PluginConfig
	if err := r.db.GetContext(ctx, &cfg, query, assignmentID, models.PluginName, models.PluginSubtype, name); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListByAssignment returns every forum plugin setting of an assignment.
func (r *PluginConfigRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]models.PluginConfig, error) {
	const query = `SELECT id, assignment, plugin, subtype, name, value FROM assign_plugin_config
WHERE assignment = $1 AND plugin = $2 AND subtype = $3 ORDER BY name ASC`
	var configs []models.PluginConfig
	if err := r.db.SelectContext(ctx, &configs, query, assignmentID, models.PluginName, models.PluginSubtype); err != nil {
		return nil, fmt.Errorf("list plugin config: %w", err)
	}
	return configs, nil
}

// Upsert inserts or updates a single setting.
func (r *PluginConfigRepository) Upsert(ctx context.Context, cfg *models.PluginConfig) error {
	stamp(cfg)
	if _, err := r.db.NamedExecContext(ctx, pluginConfigUpsert, cfg); err != nil {
		return fmt.Errorf("upsert plugin config %s: %w", cfg.Name, err)
	}
	return nil
}

// BulkUpsert writes several settings within one transaction.
func (r *PluginConfigRepository) BulkUpsert(ctx context.Context, cfgs []models.PluginConfig) error {
	if len(cfgs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plugin config tx: %w", err)
	}
	for i := range cfgs {
		stamp(&cfgs[i])
		if _, err := tx.NamedExecContext(ctx, pluginConfigUpsert, cfgs[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert plugin config %s: %w", cfgs[i].Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit plugin config tx: %w", err)
	}
	return nil
}

func stamp(cfg *models.PluginConfig) {
	cfg.Plugin = models.PluginName
	cfg.Subtype = models.PluginSubtype
}
