package post

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mediafeed/service/internal/identity"
	"github.com/mediafeed/service/internal/response"
)

// multipartMemory is how much of a multipart body is held in memory before
// net/http spills it to disk.
const multipartMemory = 32 << 20

// Handler holds HTTP handlers for the upload, feed and delete endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
	log            *zap.Logger
}

// NewHandler creates a new post Handler.
func NewHandler(svc *Service, maxUploadBytes int64, log *zap.Logger) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes, log: log.Named("post-http")}
}

// Routes mounts the post endpoints. Callers must install authentication first.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Get("/feed", h.Feed)
	r.Delete("/posts/{post_id}", h.Delete)
}

type feedResponse struct {
	Posts []FeedItem `json:"posts"`
}

// Upload godoc
//
//	@Summary		Upload media
//	@Description	Upload an image or video with an optional caption. The file is forwarded to the media store and a post is created on success.
//	@Tags			posts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Image or video"
//	@Param			caption	formData	string	false	"Caption"
//	@Success		200		{object}	Post
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file too large")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	p, err := h.svc.CreatePost(r.Context(), CreateInput{
		File:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Caption:     r.FormValue("caption"),
	}, caller)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, p)
}

// Feed godoc
//
//	@Summary		Get feed
//	@Description	Returns every post, newest first, with the author's email and whether the caller owns it.
//	@Tags			posts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	feedResponse
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/feed [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	items, err := h.svc.GetFeed(r.Context(), caller)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, feedResponse{Posts: items})
}

// Delete godoc
//
//	@Summary		Delete post
//	@Description	Delete one of the caller's own posts. The media object is not removed from the store.
//	@Tags			posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post_id	path		string	true	"Post ID"
//	@Success		200		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/posts/{post_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "post_id"), caller); err != nil {
		h.writeError(w, err)
		return
	}

	response.Ack(w, "Post deleted successfully")
}

// writeError maps service errors to responses. Causes are logged, never
// returned to the caller.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		response.Unauthorized(w, "authentication required")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Post not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "You dont have permission to delete this post")
	case errors.Is(err, ErrUploadFailed):
		response.InternalError(w, "upload failed")
	default:
		// ErrMalformedID lands here as well: a bad id is reported as a 500.
		h.log.Error("request failed", zap.Error(err))
		response.InternalError(w, "")
	}
}
