package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/local1284/membership/internal/models"
)

type NewsRepo struct {
	pool *pgxpool.Pool
}

func NewNewsRepo(pool *pgxpool.Pool) *NewsRepo {
	return &NewsRepo{pool: pool}
}

const newsColumns = `id, title, slug, excerpt, body, published, published_at, created_by, created_at, updated_at`

func scanArticle(row pgx.Row) (*models.NewsArticle, error) {
	var a models.NewsArticle
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Body, &a.Published, &a.PublishedAt,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *NewsRepo) Create(ctx context.Context, a *models.NewsArticle) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO news_articles (title, slug, excerpt, body, published, published_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, a.Title, a.Slug, a.Excerpt, a.Body, a.Published, a.PublishedAt, a.CreatedBy).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *NewsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error) {
	return scanArticle(r.pool.QueryRow(ctx, `SELECT `+newsColumns+` FROM news_articles WHERE id = $1`, id))
}

func (r *NewsRepo) GetPublishedBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	return scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+newsColumns+` FROM news_articles WHERE slug = $1 AND published`, slug))
}

func (r *NewsRepo) list(ctx context.Context, where, order string, limit, offset int) ([]models.NewsArticle, int, error) {
	if limit <= 0 {
		limit = 10
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM news_articles`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+newsColumns+` FROM news_articles`+where+` ORDER BY `+order+` LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []models.NewsArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	return articles, total, rows.Err()
}

func (r *NewsRepo) ListPublished(ctx context.Context, limit, offset int) ([]models.NewsArticle, int, error) {
	return r.list(ctx, ` WHERE published`, `published_at DESC`, limit, offset)
}

func (r *NewsRepo) ListAll(ctx context.Context, limit, offset int) ([]models.NewsArticle, int, error) {
	return r.list(ctx, ``, `created_at DESC`, limit, offset)
}

func (r *NewsRepo) Update(ctx context.Context, a *models.NewsArticle) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE news_articles SET title = $1, slug = $2, excerpt = $3, body = $4,
			published = $5, published_at = $6, updated_at = now()
		WHERE id = $7
	`, a.Title, a.Slug, a.Excerpt, a.Body, a.Published, a.PublishedAt, a.ID)
	return err
}

func (r *NewsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM news_articles WHERE id = $1`, id)
	return err
}
