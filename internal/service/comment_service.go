package service

import (
	"context"
	"strings"

	"bloggr/internal/cache"
	"bloggr/internal/models"
	"bloggr/internal/repository"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, ident models.Identity, postSlug, content string) (*models.Comment, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetBySlug(ctx, postSlug, ident.UserID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPublished {
		return nil, models.NewValidationError("Comments are only allowed on published posts")
	}

	comment := &models.Comment{
		Content: strings.TrimSpace(content),
		UserID:  ident.UserID,
		PostID:  post.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	// The cached post rendering carries the comment count.
	cache.InvalidatePost(ctx, post.Slug)
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postSlug string, ident models.Identity, limit, offset int) ([]*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, ident.UserID)
	if err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, post.ID, ident.UserID, limit, offset)
}

func (s *CommentService) UpdateComment(ctx context.Context, ident models.Identity, commentID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !ident.IsAuthenticated() || (comment.UserID != ident.UserID && !ident.IsAdmin()) {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	comment.Content = strings.TrimSpace(content)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, ident models.Identity, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !ident.IsAuthenticated() || (comment.UserID != ident.UserID && !ident.IsAdmin()) {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	if post, postErr := s.postRepo.GetByID(ctx, comment.PostID); postErr == nil {
		cache.InvalidatePost(ctx, post.Slug)
	}
	return nil
}

// ToggleCommentLike flips the caller's membership in the comment's likes set.
func (s *CommentService) ToggleCommentLike(ctx context.Context, ident models.Identity, commentID uint) (*InteractionState, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	liked, count, err := s.commentRepo.ToggleLike(ctx, ident.UserID, commentID)
	if err != nil {
		return nil, err
	}
	return &InteractionState{Member: liked, Count: count}, nil
}
