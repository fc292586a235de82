package repository

import (
	"context"
	"errors"
	"strings"

	"bloggr/internal/cache"
	"bloggr/internal/models"

	"gorm.io/gorm"
)

// PostListOptions narrows and orders a post listing.
type PostListOptions struct {
	Limit    int
	Offset   int
	ViewerID uint
	// Tag filters by tag slug when non-empty.
	Tag string
	// Author filters by author username when non-empty.
	Author string
	// Status filters by a single status. Empty means published only unless
	// AnyStatus is set.
	Status    models.PostStatus
	AnyStatus bool
	// Sort is "new" (default) or "top".
	Sort string
}

// PostRepository defines persistence operations for posts and their
// interaction sets (likes, bookmarks, reads).
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, opts PostListOptions) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error)
	ToggleBookmark(ctx context.Context, userID, postID uint) (bool, int64, error)
	ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	RecordRead(ctx context.Context, postID uint, readerKey string, userID *uint) (bool, error)
	TotalReadsForAuthor(ctx context.Context, authorID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries computing the interaction counts and the
// viewer's own liked/bookmarked state in a single query. Counts are always
// derived from the membership tables; nothing stores them.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS like_count, " +
		"(SELECT COUNT(*) FROM post_bookmarks WHERE post_bookmarks.post_id = posts.id) AS bookmark_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comment_count, " +
		"(SELECT COUNT(*) FROM post_reads WHERE post_reads.post_id = posts.id) AS read_count, " +
		"(SELECT COUNT(*) FROM post_reads WHERE post_reads.post_id = posts.id AND post_reads.user_id IS NOT NULL) AS registered_reader_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) AS liked"+
			", EXISTS(SELECT 1 FROM post_bookmarks WHERE post_bookmarks.post_id = posts.id AND post_bookmarks.user_id = ?) AS bookmarked",
			viewerID, viewerID)
	}

	return db.Select(selectQuery + ", FALSE AS liked, FALSE AS bookmarked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Post, error) {
	var post models.Post

	fetch := func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
			Preload("User").
			Preload("Tags").
			Where("posts.slug = ?", slug).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		// The anonymous rendering carries no per-viewer state, so it is safe
		// to share a cached copy. Counts go stale for at most PostTTL.
		err = cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) List(ctx context.Context, opts PostListOptions) ([]*models.Post, error) {
	var posts []*models.Post

	q := r.applyPostDetails(r.db.WithContext(ctx), opts.ViewerID).
		Preload("User").
		Preload("Tags")

	if opts.Author != "" {
		q = q.Joins("JOIN users ON users.id = posts.user_id").
			Where("users.username = ?", opts.Author)
	}
	if opts.Tag != "" {
		q = q.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", opts.Tag)
	}

	switch {
	case opts.AnyStatus:
	case opts.Status != "":
		q = q.Where("posts.status = ?", opts.Status)
	default:
		q = q.Where("posts.status = ?", models.PostStatusPublished)
	}

	switch opts.Sort {
	case "top":
		q = q.Order("like_count DESC, posts.created_at DESC")
	default:
		q = q.Order("posts.created_at DESC")
	}

	if err := q.Limit(opts.Limit).Offset(opts.Offset).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + strings.ToLower(query) + "%"
	if err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("Tags").
		Where("posts.status = ?", models.PostStatusPublished).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", like, like).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Delete(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error) {
	var liked bool
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		if liked, txErr = postLikes.toggle(tx, userID, postID); txErr != nil {
			return txErr
		}
		count, txErr = postLikes.countBy(tx, "post_id", postID)
		return txErr
	})
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}
	return liked, count, nil
}

func (r *postRepository) ToggleBookmark(ctx context.Context, userID, postID uint) (bool, int64, error) {
	var marked bool
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		if marked, txErr = postMarks.toggle(tx, userID, postID); txErr != nil {
			return txErr
		}
		count, txErr = postMarks.countBy(tx, "post_id", postID)
		return txErr
	})
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}
	return marked, count, nil
}

func (r *postRepository) ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Preload("Tags").
		Joins("JOIN post_bookmarks ON post_bookmarks.post_id = posts.id").
		Where("post_bookmarks.user_id = ?", userID).
		Order("post_bookmarks.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// RecordRead adds the reader to the post's reads set. The (post_id, identity)
// unique index makes the insert idempotent: re-reads by the same identity hit
// the conflict clause and change nothing, so a reader is counted once for the
// lifetime of their token. Returns true only when a new read was recorded.
func (r *postRepository) RecordRead(ctx context.Context, postID uint, readerKey string, userID *uint) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO post_reads (post_id, identity, user_id, created_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (post_id, identity) DO NOTHING`,
		postID, readerKey, userID,
	)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *postRepository) TotalReadsForAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("post_reads").
		Joins("JOIN posts ON posts.id = post_reads.post_id").
		Where("posts.user_id = ? AND posts.deleted_at IS NULL", authorID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
