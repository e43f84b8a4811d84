package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
	"github.com/iudanet/cropaid/pkg/api"
)

const (
	maxPostBody      = 64 << 10
	maxTitleLength   = 200
	defaultPostLimit = 50
)

// CommunityHandler обрабатывает запросы к ленте сообщества
type CommunityHandler struct {
	logger  *slog.Logger
	storage storage.CommunityStorage
	now     func() time.Time
}

// NewCommunityHandler создает handler ленты сообщества
func NewCommunityHandler(logger *slog.Logger, storage storage.CommunityStorage) *CommunityHandler {
	return &CommunityHandler{
		logger:  logger,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListPosts обрабатывает GET /api/v1/community
// Параметр limit ограничивает число публикаций (по умолчанию 50)
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultPostLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(h.logger, w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	posts, err := h.storage.ListPosts(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list posts", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, postToAPI(p))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// CreatePost обрабатывает POST /api/v1/community
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreatePostRequest
	if err := decodeJSON(w, r, maxPostBody, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode post request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		sendError(h.logger, w, "title is required", http.StatusBadRequest)
		return
	}
	if len(req.Title) > maxTitleLength {
		sendError(h.logger, w, "title is too long", http.StatusBadRequest)
		return
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  userID,
		Title:     req.Title,
		Content:   req.Content,
		Crop:      req.Crop,
		ImageURL:  req.ImageURL,
		CreatedAt: h.now(),
	}

	if err := h.storage.CreatePost(ctx, post); err != nil {
		h.logger.ErrorContext(ctx, "failed to create post", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "post created", slog.String("post_id", post.ID), slog.String("user_id", userID))
	sendJSON(h.logger, w, postToAPI(post), http.StatusCreated)
}

// LikePost обрабатывает PUT /api/v1/community/{id}/like
func (h *CommunityHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	postID := r.PathValue("id")
	if err := h.storage.LikePost(ctx, postID, userID); err != nil {
		h.storageError(w, r, err)
		return
	}

	post, err := h.storage.GetPost(ctx, postID)
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	sendJSON(h.logger, w, postToAPI(post), http.StatusOK)
}

// CommentPost обрабатывает POST /api/v1/community/{id}/comment
func (h *CommunityHandler) CommentPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CommentRequest
	if err := decodeJSON(w, r, maxPostBody, &req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		sendError(h.logger, w, "text is required", http.StatusBadRequest)
		return
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    r.PathValue("id"),
		AuthorID:  userID,
		Text:      req.Text,
		CreatedAt: h.now(),
	}

	if err := h.storage.AddComment(ctx, comment); err != nil {
		h.storageError(w, r, err)
		return
	}

	sendJSON(h.logger, w, commentToAPI(*comment), http.StatusCreated)
}

func (h *CommunityHandler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrPostNotFound) {
		sendError(h.logger, w, "post not found", http.StatusNotFound)
		return
	}
	h.logger.ErrorContext(r.Context(), "community storage error", slog.Any("error", err))
	sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
}

func postToAPI(p *models.Post) api.Post {
	comments := make([]api.Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentToAPI(c))
	}
	return api.Post{
		CreatedAt: p.CreatedAt,
		Comments:  comments,
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Content:   p.Content,
		Crop:      p.Crop,
		ImageURL:  p.ImageURL,
		Likes:     p.Likes,
	}
}

func commentToAPI(c models.Comment) api.Comment {
	return api.Comment{
		CreatedAt: c.CreatedAt,
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
	}
}
