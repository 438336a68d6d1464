package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediafeed/service/internal/identity"
	"github.com/mediafeed/service/internal/staging"
	"github.com/mediafeed/service/internal/storage"
)

// CreateInput is an inbound upload.
type CreateInput struct {
	File        io.Reader
	FileName    string
	ContentType string
	Caption     string
}

// Service composes staging, the media store and the post repository.
type Service struct {
	repo      Repository
	users     Directory
	store     storage.Storage
	staging   *staging.Buffer
	uploadTag string
	log       *zap.Logger
}

// NewService creates a post Service. Every upload is labelled with uploadTag.
func NewService(repo Repository, users Directory, store storage.Storage, buf *staging.Buffer, uploadTag string, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		store:     store,
		staging:   buf,
		uploadTag: uploadTag,
		log:       log.Named("post"),
	}
}

// CreatePost stages the upload, sends it to the media store and persists a
// post for caller. A post is created only if the media store accepted the
// file; the staged file is removed on every path.
func (s *Service) CreatePost(ctx context.Context, in CreateInput, caller identity.Identity) (*Post, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}
	if in.File == nil {
		return nil, &UploadError{Step: "stage", Err: errors.New("no file content")}
	}

	var created *Post
	err := s.staging.With(in.File, in.FileName, func(path string) error {
		res, err := s.store.Upload(ctx, path, in.FileName, storage.UploadOptions{
			UniqueFileName: true,
			Tags:           []string{s.uploadTag},
			ContentType:    in.ContentType,
		})
		if err != nil {
			return &UploadError{Step: "store", Err: err}
		}
		if res == nil || res.StatusCode != http.StatusOK {
			status := 0
			if res != nil {
				status = res.StatusCode
			}
			return &UploadError{Step: "store", Err: fmt.Errorf("media store responded with status %d", status)}
		}

		p := &Post{
			UserID:   caller.ID,
			Caption:  in.Caption,
			URL:      res.URL,
			FileType: ClassifyFileType(in.ContentType),
			FileName: res.Name,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			// No compensation: the stored media stays without a post.
			s.log.Warn("remote media stored without a post",
				zap.String("url", res.URL),
				zap.String("file_name", res.Name),
				zap.Error(err),
			)
			return &UploadError{Step: "persist", Err: err}
		}
		created = p
		return nil
	})

	if created != nil {
		if err != nil {
			s.log.Warn("release staged file", zap.Error(err))
		}
		s.log.Info("post created",
			zap.String("post_id", created.ID),
			zap.String("user_id", caller.ID),
			zap.String("file_type", string(created.FileType)),
		)
		return created, nil
	}

	var uerr *UploadError
	if !errors.As(err, &uerr) {
		err = &UploadError{Step: "stage", Err: err}
	}
	s.log.Error("file upload failed",
		zap.String("user_id", caller.ID),
		zap.String("file_name", in.FileName),
		zap.Error(err),
	)
	return nil, err
}

// GetFeed returns every post, newest first, enriched for caller.
func (s *Service) GetFeed(ctx context.Context, caller identity.Identity) ([]FeedItem, error) {
	if caller.IsZero() {
		return nil, ErrUnauthenticated
	}

	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return Assemble(posts, users, caller.ID), nil
}

// DeletePost removes postID if caller owns it. Only the row is removed; the
// media object stays in the store.
func (s *Service) DeletePost(ctx context.Context, postID string, caller identity.Identity) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}

	id, err := uuid.Parse(postID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedID, err)
	}

	p, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load post: %w", err)
	}

	if !sameID(p.UserID, caller.ID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.log.Info("post deleted", zap.String("post_id", p.ID), zap.String("user_id", caller.ID))
	return nil
}
