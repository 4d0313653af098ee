// internal/services/profile_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type ProfileService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,username"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// EnsureProfile returns the profile of an authenticated user, creating it on
// first contact. Concurrent first requests are safe: the insert is ignored
// when the row already exists.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = userID.String() + "@users.noreply"
	}

	db := s.db.WithContext(ctx)
	profile := &models.Profile{
		BaseModel: models.BaseModel{ID: userID},
		Email:     email,
		Role:      models.UserRoleUser,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(profile).Error; err != nil {
		return nil, storageError("create profile", err)
	}

	return s.GetProfile(ctx, userID)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("load profile", err)
	}
	return &profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, caller Identity, req *UpdateProfileRequest) (*models.Profile, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	profile, err := s.GetProfile(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	// Check username uniqueness if updating
	if req.Username != nil && (profile.Username == nil || *profile.Username != *req.Username) {
		var taken int64
		if err := db.Model(&models.Profile{}).
			Where("username = ? AND id <> ?", *req.Username, caller.UserID).
			Count(&taken).Error; err != nil {
			return nil, storageError("check username", err)
		}
		if taken > 0 {
			return nil, fmt.Errorf("%w: username already taken", ErrInvalidInput)
		}
	}

	updates := make(map[string]interface{})
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) > 0 {
		if err := db.Model(profile).Updates(updates).Error; err != nil {
			return nil, storageError("update profile", err)
		}
	}

	return s.GetProfile(ctx, caller.UserID)
}

// GrantCreatorCapability upgrades a plain user to creator. Creators and
// admins are left unchanged. It runs on the caller's transaction.
func (s *ProfileService) GrantCreatorCapability(tx *gorm.DB, userID uuid.UUID) error {
	result := tx.Model(&models.Profile{}).
		Where("id = ? AND role = ?", userID, models.UserRoleUser).
		Update("role", models.UserRoleCreator)
	if result.Error != nil {
		return storageError("grant creator capability", result.Error)
	}

	if result.RowsAffected > 0 {
		logrus.WithField("user_id", userID).Info("Creator capability granted")
	}
	return nil
}

// publicProfile limits preloaded profiles to the fields shown to other users.
func publicProfile(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "display_name", "avatar_url", "role", "created_at")
}
