package service

import (
	"context"
	"time"

	"bloggr/internal/middleware"
	"bloggr/internal/models"
	"bloggr/internal/observability"
	"bloggr/internal/repository"
)

// recordTimeout bounds each background read recording.
const recordTimeout = 5 * time.Second

// ViewService records post reads. Recording is an at-most-once-per-identity
// side effect of serving a post and must never slow down or fail the read
// path, so it runs detached from the request.
type ViewService struct {
	postRepo repository.PostRepository
}

func NewViewService(postRepo repository.PostRepository) *ViewService {
	return &ViewService{postRepo: postRepo}
}

// RecordRead adds the identity to the post's reads set. Only published posts
// accumulate reads, and an author reading their own post is not counted.
// Returns true when a new read was recorded.
func (s *ViewService) RecordRead(ctx context.Context, post *models.Post, ident models.Identity) (bool, error) {
	if post.Status != models.PostStatusPublished {
		return false, nil
	}
	readerKey := ident.ReaderKey()
	if readerKey == "" {
		return false, nil
	}

	var userID *uint
	var kind string
	switch {
	case ident.IsAuthenticated():
		if ident.UserID == post.UserID {
			return false, nil
		}
		id := ident.UserID
		userID = &id
		kind = "registered"
	default:
		kind = "anonymous"
	}

	recorded, err := s.postRepo.RecordRead(ctx, post.ID, readerKey, userID)
	if err != nil {
		return false, err
	}
	if recorded {
		observability.ReadRecords.WithLabelValues(kind).Inc()
	}
	return recorded, nil
}

// RecordReadAsync runs RecordRead in the background. The recording outlives
// the request (context.WithoutCancel) but is bounded by recordTimeout.
// Failures are logged and counted, never surfaced to the reader.
func (s *ViewService) RecordReadAsync(ctx context.Context, post *models.Post, ident models.Identity) {
	detached := context.WithoutCancel(ctx)
	go func() {
		recCtx, cancel := context.WithTimeout(detached, recordTimeout)
		defer cancel()

		if _, err := s.RecordRead(recCtx, post, ident); err != nil {
			observability.ReadRecordFailures.Inc()
			middleware.Logger.ErrorContext(recCtx, "failed to record post read",
				"post_id", post.ID,
				"error", err,
			)
		}
	}()
}
