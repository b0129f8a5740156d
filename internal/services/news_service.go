package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/repositories"
	"go.uber.org/zap"
)

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug.
func Slugify(title string) string {
	slug := slugCleanup.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(slug, "-")
}

const excerptMaxLength = 280

// ExtractExcerpt derives a plain-text excerpt from an HTML article body.
func ExtractExcerpt(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > excerptMaxLength {
		// Back off to a rune boundary so the cut never splits a multibyte
		// character, then prefer the last word boundary inside it.
		end := excerptMaxLength
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		cut := text[:end]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		text = cut + "…"
	}
	return text
}

type NewsService struct {
	newsRepo *repositories.NewsRepo
	audit    *AuditTrail
	log      *zap.Logger
}

func NewNewsService(newsRepo *repositories.NewsRepo, audit *AuditTrail, log *zap.Logger) *NewsService {
	return &NewsService{newsRepo: newsRepo, audit: audit, log: log}
}

func (s *NewsService) normalize(a *models.NewsArticle) {
	if a.Slug == "" {
		a.Slug = Slugify(a.Title)
	}
	if a.Excerpt == nil || *a.Excerpt == "" {
		if excerpt := ExtractExcerpt(a.Body); excerpt != "" {
			a.Excerpt = &excerpt
		}
	}
	if a.Published && a.PublishedAt == nil {
		now := time.Now()
		a.PublishedAt = &now
	}
}

func (s *NewsService) Create(ctx context.Context, caller Caller, a *models.NewsArticle) error {
	s.normalize(a)

	if err := s.newsRepo.Create(ctx, a); err != nil {
		return err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionNewsCreate,
		EntityType: "news_article",
		EntityID:   a.ID.String(),
		After:      a,
	})
	return nil
}

func (s *NewsService) Update(ctx context.Context, caller Caller, id uuid.UUID, apply func(*models.NewsArticle)) (*models.NewsArticle, error) {
	article, err := s.newsRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	before := *article
	apply(article)
	s.normalize(article)

	if err := s.newsRepo.Update(ctx, article); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionNewsUpdate,
		EntityType: "news_article",
		EntityID:   article.ID.String(),
		Before:     &before,
		After:      article,
	})
	return article, nil
}

func (s *NewsService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	article, err := s.newsRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.newsRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionNewsDelete,
		EntityType: "news_article",
		EntityID:   id.String(),
		Before:     article,
		After:      nil,
	})
	return nil
}

func (s *NewsService) GetPublishedBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	article, err := s.newsRepo.GetPublishedBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return article, err
}

func (s *NewsService) ListPublished(ctx context.Context, limit, offset int) ([]models.NewsArticle, int, error) {
	return s.newsRepo.ListPublished(ctx, limit, offset)
}

func (s *NewsService) ListAll(ctx context.Context, limit, offset int) ([]models.NewsArticle, int, error) {
	return s.newsRepo.ListAll(ctx, limit, offset)
}
