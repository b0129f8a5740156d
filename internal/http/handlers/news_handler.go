package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/services"
	"go.uber.org/zap"
)

type NewsHandler struct {
	newsService *services.NewsService
	log         *zap.Logger
}

func NewNewsHandler(newsService *services.NewsService, log *zap.Logger) *NewsHandler {
	return &NewsHandler{newsService: newsService, log: log}
}

// ListPublished serves the public news feed.
func (h *NewsHandler) ListPublished(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, 20)
	articles, total, err := h.newsService.ListPublished(c.Context(), limit, offset)
	if err != nil {
		h.log.Error("list published news failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if articles == nil {
		articles = []models.NewsArticle{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PagedData{
		Items: articles, Total: total, Limit: limit, Offset: offset,
	}})
}

func (h *NewsHandler) GetBySlug(c *fiber.Ctx) error {
	article, err := h.newsService.GetPublishedBySlug(c.Context(), c.Params("slug"))
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "Article not found.")
	}
	if err != nil {
		h.log.Error("get article failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: article})
}

// ListAll serves the admin view, drafts included.
func (h *NewsHandler) ListAll(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, 20)
	articles, total, err := h.newsService.ListAll(c.Context(), limit, offset)
	if err != nil {
		h.log.Error("list news failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if articles == nil {
		articles = []models.NewsArticle{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PagedData{
		Items: articles, Total: total, Limit: limit, Offset: offset,
	}})
}

func (h *NewsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateNewsRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if req.Title == "" || req.Body == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Title and body are required.")
	}

	article := &models.NewsArticle{
		Title:     req.Title,
		Slug:      req.Slug,
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		Published: req.Published,
	}
	if identity := middleware.GetIdentity(c); identity != nil {
		if id, err := uuid.Parse(identity.ID); err == nil {
			article.CreatedBy = &id
		}
	}

	if err := h.newsService.Create(c.Context(), callerFromCtx(c), article); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: article})
}

func (h *NewsHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid article id.")
	}

	var req dto.UpdateNewsRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	article, err := h.newsService.Update(c.Context(), callerFromCtx(c), id, func(a *models.NewsArticle) {
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Slug != nil {
			a.Slug = *req.Slug
		}
		if req.Excerpt != nil {
			a.Excerpt = req.Excerpt
		}
		if req.Body != nil {
			a.Body = *req.Body
		}
		if req.Published != nil {
			a.Published = *req.Published
		}
	})
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "Article not found.")
	}
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: article})
}

func (h *NewsHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid article id.")
	}

	err = h.newsService.Delete(c.Context(), callerFromCtx(c), id)
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "Article not found.")
	}
	if err != nil {
		h.log.Error("delete article failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
