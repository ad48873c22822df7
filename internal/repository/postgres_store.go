package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

const templatesTable = `CREATE TABLE IF NOT EXISTS document_templates (
	id         TEXT PRIMARY KEY,
	tenant_id  TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresTemplateStore keeps the whole template as JSONB next to a few
// columns used for listing.
type PostgresTemplateStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresTemplateStore(db *sql.DB, logger *zap.Logger) *PostgresTemplateStore {
	return &PostgresTemplateStore{db: db, logger: logger}
}

func (s *PostgresTemplateStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, templatesTable); err != nil {
		return fmt.Errorf("create document_templates: %w", err)
	}
	return nil
}

func (s *PostgresTemplateStore) Save(ctx context.Context, tpl *models.Template) error {
	data, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	m := tpl.Metadata
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO document_templates (id, tenant_id, name, status, body, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at`,
		m.ID, m.TenantID, m.Name, string(m.Status), data, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save template %s: %w", m.ID, err)
	}
	return nil
}

func (s *PostgresTemplateStore) Load(ctx context.Context, id string) (*models.Template, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM document_templates WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("template", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	return decodeTemplate(body)
}

func (s *PostgresTemplateStore) List(ctx context.Context) ([]models.TemplateListItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM document_templates ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	items := []models.TemplateListItem{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		tpl, err := decodeTemplate(body)
		if err != nil {
			s.logger.Warn("skipping unreadable template row", zap.Error(err))
			continue
		}
		items = append(items, tpl.ListItem())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return items, nil
}

func (s *PostgresTemplateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM document_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if n == 0 {
		return notFound("template", id)
	}
	return nil
}
