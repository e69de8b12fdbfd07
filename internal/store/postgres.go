package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/premium-reader/internal/types"
)

//go:embed schema.sql
var schemaSQL string

const articlesTable = "saved_articles"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"id", "url", "title", "author", "site_name", "published_at",
	"content", "enhanced_content", "insights", "tags", "user_id", "saved_at",
}

// Postgres stores articles in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Migrate creates the articles table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) Backend() string { return BackendPostgres }

func (p *Postgres) Save(ctx context.Context, article *types.SavedArticle) (*types.SavedArticle, bool, error) {
	insights, err := json.Marshal(nonNilInsights(article.Insights))
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal insights: %w", err)
	}
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	query, args, err := psql.Insert(articlesTable).
		Columns("url", "title", "author", "site_name", "published_at",
			"content", "enhanced_content", "insights", "tags", "user_id").
		Values(article.URL, article.Title, article.Author, article.SiteName, article.PublishedAt,
			article.Content, article.EnhancedContent, insights, tags, article.UserID).
		Suffix(`ON CONFLICT (url, user_id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			site_name = EXCLUDED.site_name,
			published_at = EXCLUDED.published_at,
			content = EXCLUDED.content,
			enhanced_content = EXCLUDED.enhanced_content,
			insights = EXCLUDED.insights,
			saved_at = NOW()
		RETURNING id, tags, saved_at, (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build insert: %w", err)
	}

	saved := *article
	saved.Insights = nonNilInsights(article.Insights)
	var created bool
	err = p.pool.QueryRow(ctx, query, args...).Scan(&saved.ID, &saved.Tags, &saved.SavedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save article: %w", err)
	}
	return &saved, created, nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*types.SavedArticle, error) {
	query, args, err := psql.Select(articleColumns...).
		From(articlesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	article, err := scanArticle(p.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %s: %w", id, err)
	}
	return article, nil
}

func (p *Postgres) List(ctx context.Context, opts ListOptions) ([]types.SavedArticle, int, error) {
	opts = opts.Normalize()

	filter := sq.And{}
	if opts.UserID != "" {
		filter = append(filter, sq.Eq{"user_id": opts.UserID})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From(articlesTable).Where(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count: %w", err)
	}
	var total int
	if err := p.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	query, args, err := psql.Select(articleColumns...).
		From(articlesTable).
		Where(filter).
		OrderBy("saved_at DESC", "id").
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []types.SavedArticle{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, total, nil
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := psql.Delete(articlesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete article %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanArticle(row pgx.Row) (*types.SavedArticle, error) {
	var (
		a        types.SavedArticle
		insights []byte
	)
	err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Author, &a.SiteName, &a.PublishedAt,
		&a.Content, &a.EnhancedContent, &insights, &a.Tags, &a.UserID, &a.SavedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(insights, &a.Insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal insights: %w", err)
	}
	a.Insights = nonNilInsights(a.Insights)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}

func nonNilInsights(insights []types.Insight) []types.Insight {
	if insights == nil {
		return []types.Insight{}
	}
	return insights
}
