// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"bloggr/internal/models"
	"bloggr/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample account.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Username:  strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10000, 99999)),
		Email:     strings.ToLower(gofakeit.Email()),
		Password:  string(hashedPassword),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Bio:       gofakeit.Sentence(10),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:      models.UserRoleReader,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTag persists a tag with a slug derived from the name.
func (f *Factory) CreateTag(name string, category models.TagCategory) (*models.Tag, error) {
	tag := &models.Tag{
		Name:     name,
		Slug:     validation.Slugify(name),
		Category: category,
	}
	if err := f.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// CreatePost constructs and persists a post for the given author. The slug is
// suffixed with a random token so bulk seeding never collides.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rand.Intn(5)+4), ".")
	content := gofakeit.Paragraph(f.rand.Intn(6)+3, 4, 12, "\n\n")

	post := &models.Post{
		Title:      title,
		Slug:       fmt.Sprintf("%s-%s", validation.Slugify(title), gofakeit.UUID()[:8]),
		Content:    content,
		CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		ReadTime:   f.rand.Intn(12) + 1,
		UserID:     author.ID,
		Status:     models.PostStatusPublished,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rand.Intn(90)
	hoursBack := f.rand.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the given user on the given post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(f.rand.Intn(12) + 3),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// RecordAnonymousRead adds a synthetic anonymous visitor to the post's reads set.
func (f *Factory) RecordAnonymousRead(post *models.Post) error {
	read := &models.PostRead{
		PostID:   post.ID,
		Identity: gofakeit.UUID(),
	}
	return f.db.Create(read).Error
}

// RecordUserRead adds a registered reader to the post's reads set.
func (f *Factory) RecordUserRead(post *models.Post, user *models.User) error {
	read := &models.PostRead{
		PostID:   post.ID,
		Identity: fmt.Sprintf("user:%d", user.ID),
		UserID:   &user.ID,
	}
	return f.db.Create(read).Error
}
