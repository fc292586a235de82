// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"bloggr/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// defaultTags is the built-in tag inventory. Tags are admin-managed in
// production, so seeding gives the catalog a sensible starting point.
var defaultTags = []struct {
	Name     string
	Category models.TagCategory
}{
	{"Go", models.TagCategoryProgramming},
	{"Databases", models.TagCategoryProgramming},
	{"Distributed Systems", models.TagCategoryProgramming},
	{"Web Development", models.TagCategoryProgramming},
	{"UI Design", models.TagCategoryDesign},
	{"Typography", models.TagCategoryDesign},
	{"Interviewing", models.TagCategoryCareer},
	{"Remote Work", models.TagCategoryCareer},
	{"Travel", models.TagCategoryLife},
	{"Productivity", models.TagCategoryLife},
	{"Miscellany", models.TagCategoryOther},
}

// Seed populates the database with a believable social graph: authors with
// published and draft posts, readers who like, bookmark, comment and follow,
// and a spread of anonymous and registered reads.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 60
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db)

	tags, err := ensureTags(f)
	if err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	users, authors, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	posts, err := createPosts(f, authors, tags, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	if err := createInteractions(f, users, posts); err != nil {
		return fmt.Errorf("failed to seed interactions: %w", err)
	}

	if err := createFollows(f, users, authors); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log.Printf("seeded %d users (%d authors), %d posts, %d tags",
		len(users), len(authors), len(posts), len(tags))
	return nil
}

func clearData(db *gorm.DB) error {
	// Children before parents so FK constraints hold.
	for _, model := range []any{
		&models.CommentLike{}, &models.Comment{},
		&models.PostRead{}, &models.PostBookmark{}, &models.PostLike{},
		&models.Follow{}, &models.Post{}, &models.Tag{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureTags(f *Factory) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(defaultTags))
	for _, t := range defaultTags {
		var existing models.Tag
		err := f.db.Where("name = ?", t.Name).First(&existing).Error
		if err == nil {
			tags = append(tags, &existing)
			continue
		}
		tag, err := f.CreateTag(t.Name, t.Category)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func createUsers(f *Factory, count int) (users, authors []*models.User, err error) {
	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@bloggr.local"
		u.Role = models.UserRoleAdmin
	})
	if err != nil {
		return nil, nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		role := models.UserRoleReader
		// roughly a third of accounts write
		if f.rand.Intn(3) == 0 {
			role = models.UserRoleAuthor
		}
		user, err := f.CreateUser(func(u *models.User) { u.Role = role })
		if err != nil {
			return nil, nil, err
		}
		users = append(users, user)
		if role == models.UserRoleAuthor {
			authors = append(authors, user)
		}
	}

	if len(authors) == 0 {
		author, err := f.CreateUser(func(u *models.User) { u.Role = models.UserRoleAuthor })
		if err != nil {
			return nil, nil, err
		}
		users = append(users, author)
		authors = append(authors, author)
	}
	return users, authors, nil
}

func createPosts(f *Factory, authors []*models.User, tags []*models.Tag, count int) ([]*models.Post, error) {
	var published []*models.Post
	for i := 0; i < count; i++ {
		author := authors[f.rand.Intn(len(authors))]

		status := models.PostStatusPublished
		switch f.rand.Intn(10) {
		case 0:
			status = models.PostStatusDraft
		case 1:
			status = models.PostStatusArchived
		}

		post, err := f.CreatePost(author, func(p *models.Post) { p.Status = status })
		if err != nil {
			return nil, err
		}

		// one to three tags per post
		picked := f.rand.Perm(len(tags))[:f.rand.Intn(3)+1]
		for _, idx := range picked {
			if err := f.db.Model(post).Association("Tags").Append(tags[idx]); err != nil {
				return nil, err
			}
		}

		if status == models.PostStatusPublished {
			published = append(published, post)
		}
	}
	return published, nil
}

func createInteractions(f *Factory, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID {
				continue
			}
			roll := f.rand.Intn(100)
			if roll < 30 {
				if err := f.db.Create(&models.PostLike{UserID: user.ID, PostID: post.ID}).Error; err != nil {
					return err
				}
			}
			if roll < 10 {
				if err := f.db.Create(&models.PostBookmark{UserID: user.ID, PostID: post.ID}).Error; err != nil {
					return err
				}
			}
			if roll < 15 {
				if _, err := f.CreateComment(user, post); err != nil {
					return err
				}
			}
			if roll < 40 {
				if err := f.RecordUserRead(post, user); err != nil {
					return err
				}
			}
		}

		// anonymous traffic dwarfs registered readers
		for i := 0; i < f.rand.Intn(20); i++ {
			if err := f.RecordAnonymousRead(post); err != nil {
				return err
			}
		}
	}
	return nil
}

func createFollows(f *Factory, users, authors []*models.User) error {
	for _, user := range users {
		for _, author := range authors {
			if user.ID == author.ID {
				continue
			}
			if f.rand.Intn(100) < 25 {
				follow := &models.Follow{FollowerID: user.ID, FolloweeID: author.ID}
				if err := f.db.Create(follow).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
