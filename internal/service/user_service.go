package service

import (
	"context"

	"aktiv/internal/models"
	"aktiv/internal/repository"
)

// UserService provides profile and location business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	UserID              uint
	Username            string
	FullName            string
	Bio                 string
	Avatar              string
	LocationCity        string
	LocationState       string
	LocationCountry     string
	PreferredCategories []string
	AccountabilityMode  *bool
}

// UpdateLocationInput carries a location share or clear.
type UpdateLocationInput struct {
	UserID        uint
	Latitude      *float64
	Longitude     *float64
	MaxDistanceKm float64
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// SearchUsers finds users by username or full name substring.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if len(query) < 2 {
		return nil, models.NewValidationError("Search query must be at least 2 characters")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxUsernameLen = 30

	if in.Username != "" {
		if len(in.Username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 30 characters)")
		}
		user.Username = in.Username
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if in.LocationCity != "" {
		user.LocationCity = in.LocationCity
	}
	if in.LocationState != "" {
		user.LocationState = in.LocationState
	}
	if in.LocationCountry != "" {
		user.LocationCountry = in.LocationCountry
	}
	if in.AccountabilityMode != nil {
		user.AccountabilityMode = *in.AccountabilityMode
	}
	if in.PreferredCategories != nil {
		joined, err := joinCategories(in.PreferredCategories)
		if err != nil {
			return nil, err
		}
		user.PreferredCategories = joined
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateLocation shares, moves, or clears the user's geographic point.
// Latitude and longitude must come together or not at all.
func (s *UserService) UpdateLocation(ctx context.Context, in UpdateLocationInput) (*models.User, error) {
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, models.NewValidationError("latitude and longitude must be provided together")
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, models.NewValidationError("latitude out of range")
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, models.NewValidationError("longitude out of range")
		}
	}
	if in.MaxDistanceKm < 0 {
		return nil, models.NewValidationError("max distance must be positive")
	}

	if err := s.userRepo.UpdateLocation(ctx, in.UserID, in.Latitude, in.Longitude, in.MaxDistanceKm); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

// SetAdmin grants or revokes admin rights on the target user.
func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteAccount soft deletes the user.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.userRepo.Delete(ctx, userID)
}

func joinCategories(raw []string) (string, error) {
	out := ""
	for i, r := range raw {
		cat, ok := models.ParseGoalCategory(r)
		if !ok {
			return "", models.NewValidationError("unknown goal category: " + r)
		}
		if i > 0 {
			out += ","
		}
		out += string(cat)
	}
	return out, nil
}
