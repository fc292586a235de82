package service

import (
	"context"
	"net/url"
	"strings"

	"bloggr/internal/cache"
	"bloggr/internal/models"
	"bloggr/internal/repository"
	"bloggr/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const maxBioLen = 500

// Profile is a user profile enriched with the cumulative read count of the
// user's posts.
type Profile struct {
	models.User
	TotalReads int64 `json:"total_reads"`
}

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateProfileInput struct {
	Identity    models.Identity
	FirstName   *string
	LastName    *string
	Bio         *string
	Avatar      *string
	SocialLinks []string
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  strings.ToLower(in.Username),
		Email:     strings.ToLower(in.Email),
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.UserRoleReader,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns the account. The same error is
// returned for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewAuthError(models.CodeAuthInvalid, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewAuthError(models.CodeAuthInvalid, "Invalid email or password")
	}
	return user, nil
}

// GetProfile returns the named user's profile with follow counts and the
// cached total read count across their posts.
func (s *UserService) GetProfile(ctx context.Context, username string, ident models.Identity) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username, ident.UserID)
	if err != nil {
		return nil, err
	}

	var totalReads int64
	err = cache.Aside(ctx, cache.TotalReadsKey(username), &totalReads, cache.TotalReadsTTL, func() error {
		var fetchErr error
		totalReads, fetchErr = s.postRepo.TotalReadsForAuthor(ctx, user.ID)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	return &Profile{User: *user, TotalReads: totalReads}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if !in.Identity.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}

	user, err := s.userRepo.GetByID(ctx, in.Identity.UserID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.SocialLinks != nil {
		if len(in.SocialLinks) > models.MaxSocialLinks {
			return nil, models.NewValidationError("At most 5 social links are allowed")
		}
		for _, link := range in.SocialLinks {
			parsed, parseErr := url.Parse(link)
			if parseErr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				return nil, models.NewValidationError("Social links must be valid http(s) URLs")
			}
		}
		user.SocialLinks = in.SocialLinks
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole changes the named user's role. Admin only.
func (s *UserService) UpdateRole(ctx context.Context, ident models.Identity, username string, role models.UserRole) (*models.User, error) {
	if !ident.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Invalid role")
	}

	user, err := s.userRepo.GetByUsername(ctx, username, ident.UserID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
