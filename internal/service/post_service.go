// Package service implements the application's business logic on top of the
// repository layer. Services validate input, enforce ownership and role
// rules, and never touch the HTTP layer.
package service

import (
	"context"
	"fmt"
	"strings"

	"bloggr/internal/cache"
	"bloggr/internal/models"
	"bloggr/internal/repository"
	"bloggr/internal/validation"
)

const (
	maxTitleLen   = 300
	maxContentLen = 100000
	maxPostTags   = 5

	// wordsPerMinute drives the read-time estimate shown on posts.
	wordsPerMinute = 200

	// maxSlugAttempts bounds the "-2", "-3", ... dedup suffix search.
	maxSlugAttempts = 50
)

// InteractionState is the outcome of a toggle: the caller's membership after
// the flip plus the set's new size.
type InteractionState struct {
	Member bool  `json:"member"`
	Count  int64 `json:"count"`
}

type PostService struct {
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
}

type CreatePostInput struct {
	Identity   models.Identity
	Title      string
	Content    string
	CoverImage string
	Status     models.PostStatus
	Tags       []string
}

type UpdatePostInput struct {
	Identity   models.Identity
	Slug       string
	Title      string
	Content    string
	CoverImage string
	Tags       []string
}

type ListPostsInput struct {
	Identity models.Identity
	Limit    int
	Offset   int
	Tag      string
	Author   string
	Sort     string
}

func NewPostService(postRepo repository.PostRepository, tagRepo repository.TagRepository) *PostService {
	return &PostService{postRepo: postRepo, tagRepo: tagRepo}
}

// canAuthor reports whether the identity may create posts.
func canAuthor(ident models.Identity) bool {
	return ident.IsAuthenticated() &&
		(ident.Role == models.UserRoleAuthor || ident.Role == models.UserRoleAdmin)
}

// canModify reports whether the identity may edit or delete the post:
// its author, or an admin.
func canModify(ident models.Identity, post *models.Post) bool {
	if !ident.IsAuthenticated() {
		return false
	}
	return post.UserID == ident.UserID || ident.IsAdmin()
}

// estimateReadTime returns the read time in whole minutes, at least 1 for
// any non-empty content.
func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// uniqueSlug derives a slug from the title and suffixes it with a counter
// until it is free. Generation and insert are not atomic; a losing race
// surfaces as the repository's conflict error and the client retries.
func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := validation.Slugify(title)
	if base == "" {
		return "", models.NewValidationError("Title must contain at least one letter or digit")
	}
	if err := validation.ValidateSlug(base); err != nil {
		base = "post-" + base
	}

	slug := base
	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := s.postRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", models.NewConflictError("Too many posts with a similar title")
}

// resolveTags maps tag slugs to catalog entries. Every post carries at least
// one tag, so an empty selection is rejected here for both create and retag.
func (s *PostService) resolveTags(ctx context.Context, slugs []string) ([]models.Tag, error) {
	if len(slugs) == 0 {
		return nil, models.NewValidationError("At least one tag is required")
	}
	if len(slugs) > maxPostTags {
		return nil, models.NewValidationError(fmt.Sprintf("A post can have at most %d tags", maxPostTags))
	}
	tags, err := s.tagRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(slugs) {
		return nil, models.NewValidationError("One or more tags do not exist")
	}
	return tags, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if !canAuthor(in.Identity) {
		return nil, models.NewForbiddenError("Author access required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 100000 characters)")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, models.NewValidationError("Invalid status")
	}

	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      strings.TrimSpace(in.Title),
		Slug:       slug,
		Content:    in.Content,
		CoverImage: in.CoverImage,
		ReadTime:   estimateReadTime(in.Content),
		UserID:     in.Identity.UserID,
		Status:     status,
		Tags:       tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetBySlug(ctx, post.Slug, in.Identity.UserID)
}

func (s *PostService) GetPost(ctx context.Context, slug string, ident models.Identity) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug, ident.UserID)
	if err != nil {
		return nil, err
	}
	// Unpublished posts are visible only to their author and admins.
	if post.Status != models.PostStatusPublished && !canModify(ident, post) {
		return nil, models.NewNotFoundError("Post", slug)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, repository.PostListOptions{
		Limit:    in.Limit,
		Offset:   in.Offset,
		ViewerID: in.Identity.UserID,
		Tag:      in.Tag,
		Author:   in.Author,
		Sort:     in.Sort,
	})
}

// ListOwnPosts returns the caller's posts in every status, optionally
// filtered to one.
func (s *PostService) ListOwnPosts(ctx context.Context, ident models.Identity, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}
	if status != "" && !models.ValidPostStatus(status) {
		return nil, models.NewValidationError("Invalid status")
	}
	return s.postRepo.List(ctx, repository.PostListOptions{
		Limit:     limit,
		Offset:    offset,
		ViewerID:  ident.UserID,
		Author:    ident.Username,
		Status:    status,
		AnyStatus: status == "",
	})
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, ident models.Identity) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset, ident.UserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug, in.Identity.UserID)
	if err != nil {
		return nil, err
	}
	if !canModify(in.Identity, post) {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		// The slug is the post's public identity; title edits do not rename it.
		post.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 100000 characters)")
		}
		post.Content = in.Content
		post.ReadTime = estimateReadTime(in.Content)
	}
	if in.CoverImage != "" {
		post.CoverImage = in.CoverImage
	}

	if in.Tags != nil {
		tags, err := s.resolveTags(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.tagRepo.ReplacePostTags(ctx, post, tags); err != nil {
			return nil, err
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetBySlug(ctx, post.Slug, in.Identity.UserID)
}

// UpdateStatus moves the post to the given status. Any status can be set by
// the post's author or an admin; there is no transition graph.
func (s *PostService) UpdateStatus(ctx context.Context, ident models.Identity, slug string, status models.PostStatus) (*models.Post, error) {
	if !models.ValidPostStatus(status) {
		return nil, models.NewValidationError("Invalid status")
	}
	post, err := s.postRepo.GetBySlug(ctx, slug, ident.UserID)
	if err != nil {
		return nil, err
	}
	if !canModify(ident, post) {
		return nil, models.NewForbiddenError("You can only change the status of your own posts")
	}

	post.Status = status
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, ident models.Identity, slug string) error {
	post, err := s.postRepo.GetBySlug(ctx, slug, ident.UserID)
	if err != nil {
		return err
	}
	if !canModify(ident, post) {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, post)
}

// ToggleLike flips the caller's membership in the post's likes set and
// returns the resulting state.
func (s *PostService) ToggleLike(ctx context.Context, ident models.Identity, slug string) (*InteractionState, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}
	post, err := s.postRepo.GetBySlug(ctx, slug, ident.UserID)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.postRepo.ToggleLike(ctx, ident.UserID, post.ID)
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, post.Slug)
	return &InteractionState{Member: liked, Count: count}, nil
}

// ToggleBookmark flips the caller's membership in the post's bookmarks set.
func (s *PostService) ToggleBookmark(ctx context.Context, ident models.Identity, slug string) (*InteractionState, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}
	post, err := s.postRepo.GetBySlug(ctx, slug, ident.UserID)
	if err != nil {
		return nil, err
	}

	marked, count, err := s.postRepo.ToggleBookmark(ctx, ident.UserID, post.ID)
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, post.Slug)
	return &InteractionState{Member: marked, Count: count}, nil
}

func (s *PostService) ListBookmarks(ctx context.Context, ident models.Identity, limit, offset int) ([]*models.Post, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}
	return s.postRepo.ListBookmarked(ctx, ident.UserID, limit, offset)
}
