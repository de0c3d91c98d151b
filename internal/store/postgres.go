package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
)

var _ Store = (*Postgres)(nil)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	companyColumns = []string{
		"id::text", "name", "COALESCE(sector, '')", "COALESCE(stage, '')",
		"COALESCE(website, '')", "COALESCE(description, '')", "COALESCE(logo_url, '')",
		"investment_date", "COALESCE(ownership_percent, 0)::float8",
	}
	alertColumns = []string{
		"id::text", "company_id::text", "type", "title", "summary", "source",
		"sentiment", "detected_at", "is_read", "perplexity_data",
	}
	insightColumns = []string{
		"id::text", "company_id::text", "insight_type", "content", "generated_at", "expires_at",
	}
)

// Postgres is a Store backed by a pgx connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and verifies the connection
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the pool
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) ListCompanies(ctx context.Context) ([]model.Company, error) {
	query, args, err := psql.Select(companyColumns...).From("companies").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) GetCompany(ctx context.Context, id string) (model.Company, error) {
	query, args, err := psql.Select(companyColumns...).From("companies").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Company{}, fmt.Errorf("build query: %w", err)
	}

	c, err := scanCompany(p.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Company{}, fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (p *Postgres) CreateCompany(ctx context.Context, c model.Company) (model.Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query, args, err := psql.Insert("companies").
		Columns("id", "name", "sector", "stage", "website", "description", "logo_url", "investment_date", "ownership_percent").
		Values(c.ID, c.Name, nullable(c.Sector), nullable(c.Stage), nullable(c.Website), nullable(c.Description), nullable(c.LogoURL), c.InvestmentDate, c.OwnershipPercent).
		ToSql()
	if err != nil {
		return model.Company{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return model.Company{}, fmt.Errorf("insert company: %w", err)
	}
	return c, nil
}

func (p *Postgres) RecentTitles(ctx context.Context, companyID string, since time.Time) (model.TitleSet, error) {
	query, args, err := psql.Select("title").From("alerts").
		Where(sq.Eq{"company_id": companyID}).
		Where(sq.GtOrEq{"detected_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent titles: %w", err)
	}
	defer rows.Close()

	set := model.NewTitleSet()
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		set.Add(title)
	}
	return set, rows.Err()
}

// SaveAlerts inserts each alert on its own so one bad row does not lose the rest
func (p *Postgres) SaveAlerts(ctx context.Context, alerts []model.Alert) ([]model.Alert, error) {
	saved := make([]model.Alert, 0, len(alerts))
	var errs []error

	for _, a := range alerts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}

		var raw []byte
		if len(a.RawPayload) > 0 {
			raw = a.RawPayload
		}

		query, args, err := psql.Insert("alerts").
			Columns("id", "company_id", "type", "title", "summary", "source", "sentiment", "detected_at", "is_read", "perplexity_data").
			Values(a.ID, a.CompanyID, string(a.Type), a.Title, a.Summary, a.Source, string(a.Sentiment), a.DetectedAt, a.IsRead, raw).
			ToSql()
		if err != nil {
			errs = append(errs, fmt.Errorf("build insert %q: %w", a.Title, err))
			continue
		}

		if _, err := p.pool.Exec(ctx, query, args...); err != nil {
			logger.Log.WithFields(logger.Fields{
				"company_id": a.CompanyID,
				"title":      a.Title,
			}).WithError(err).Warn("failed to insert alert")
			errs = append(errs, fmt.Errorf("insert alert %q: %w", a.Title, err))
			continue
		}
		saved = append(saved, a)
	}

	return saved, errors.Join(errs...)
}

func (p *Postgres) RecentAlerts(ctx context.Context, companyID string, limit int) ([]model.Alert, error) {
	return p.ListAlerts(ctx, AlertFilter{CompanyID: companyID, Limit: limit})
}

func (p *Postgres) ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	builder := psql.Select(alertColumns...).From("alerts").OrderBy("detected_at DESC", "seq ASC")
	if filter.CompanyID != "" {
		builder = builder.Where(sq.Eq{"company_id": filter.CompanyID})
	}
	if filter.IsRead != nil {
		builder = builder.Where(sq.Eq{"is_read": *filter.IsRead})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var (
			a         model.Alert
			topic     string
			sentiment string
			raw       []byte
		)
		if err := rows.Scan(&a.ID, &a.CompanyID, &topic, &a.Title, &a.Summary, &a.Source, &sentiment, &a.DetectedAt, &a.IsRead, &raw); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Type = model.Topic(topic)
		a.Sentiment = model.Sentiment(sentiment)
		a.RawPayload = raw
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkAsRead(ctx context.Context, id string) error {
	query, args, err := psql.Update("alerts").Set("is_read", true).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

func (p *Postgres) MarkAllAsRead(ctx context.Context, companyID string) (int, error) {
	builder := psql.Update("alerts").Set("is_read", true).Where(sq.Eq{"is_read": false})
	if companyID != "" {
		builder = builder.Where(sq.Eq{"company_id": companyID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark alerts read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SaveInsights writes a batch in one transaction
func (p *Postgres) SaveInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error) {
	if len(insights) == 0 {
		return []model.Insight{}, nil
	}

	builder := psql.Insert("insights").Columns("id", "company_id", "insight_type", "content", "generated_at", "expires_at")
	saved := make([]model.Insight, 0, len(insights))
	for _, in := range insights {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		builder = builder.Values(in.ID, in.CompanyID, string(in.InsightType), in.Content, in.GeneratedAt, in.ExpiresAt)
		saved = append(saved, in)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert insights: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

func (p *Postgres) ActiveInsights(ctx context.Context, companyID string, now time.Time) ([]model.Insight, error) {
	query, args, err := psql.Select(insightColumns...).From("insights").
		Where(sq.Eq{"company_id": companyID}).
		Where(sq.Gt{"expires_at": now}).
		OrderBy("generated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	var out []model.Insight
	for rows.Next() {
		var (
			in   model.Insight
			kind string
		)
		if err := rows.Scan(&in.ID, &in.CompanyID, &kind, &in.Content, &in.GeneratedAt, &in.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		in.InsightType = model.InsightType(kind)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteExpiredInsights(ctx context.Context, now time.Time) (int, error) {
	query, args, err := psql.Delete("insights").Where(sq.Lt{"expires_at": now}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired insights: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanCompany(row pgx.Row) (model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Sector, &c.Stage, &c.Website, &c.Description, &c.LogoURL, &c.InvestmentDate, &c.OwnershipPercent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan company: %w", err)
	}
	return c, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
