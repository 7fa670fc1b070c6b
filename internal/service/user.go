package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this user")
	ErrNotSubscribed     = errors.New("not subscribed to this user")
)

// UserService handles user profiles, avatars and subscriptions
type UserService struct {
	db     *gorm.DB
	images ImageStore
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{db: db, images: images}
}

// Get retrieves a user by ID with the is_subscribed flag computed for
// the viewer. A nil viewer (anonymous request) sees false.
func (s *UserService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	subscribed, err := subscribedSet(ctx, s.db, viewer, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}

	resp := userResponse(&user, subscribed[user.ID])
	return &resp, nil
}

// List returns a page of users ordered by registration time
func (s *UserService) List(ctx context.Context, viewer *uuid.UUID, page, limit int) (int64, []types.UserResponse, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at, id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return 0, nil, err
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedSet(ctx, s.db, viewer, ids)
	if err != nil {
		return 0, nil, err
	}

	results := make([]types.UserResponse, len(users))
	for i := range users {
		results[i] = userResponse(&users[i], subscribed[users[i].ID])
	}
	return count, results, nil
}

// UpdateMe applies a partial profile update
func (s *UserService) UpdateMe(ctx context.Context, userID uuid.UUID, req *types.UpdateMeRequest) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if !usernamePattern.MatchString(*req.Username) {
			return nil, ErrInvalidUsername
		}
		var existing models.User
		if err := s.db.WithContext(ctx).Where("username = ?", *req.Username).First(&existing).Error; err == nil {
			return nil, ErrUsernameTaken
		}
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}

	resp := userResponse(&user, false)
	return &resp, nil
}

// SetAvatar decodes a base64 image payload, stores it and records the URL
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}

	data, ext, err := DecodeBase64Image(dataURI)
	if err != nil {
		return "", err
	}

	url, err := s.images.Save(ctx, data, ext)
	if err != nil {
		return "", err
	}

	if user.AvatarURL != "" {
		_ = s.images.Delete(ctx, user.AvatarURL)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("avatar_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}

// DeleteAvatar removes the stored avatar and clears the reference
func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if user.AvatarURL != "" {
		_ = s.images.Delete(ctx, user.AvatarURL)
	}

	return s.db.WithContext(ctx).Model(&user).Update("avatar_url", "").Error
}

// Subscribe adds a subscription to the author and returns the author
// with their recipes. Self-subscription is rejected before any
// existence check.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.UserWithRecipesResponse, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadySubscribed
	}

	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		// A concurrent insert loses at the unique index and surfaces
		// as a conflict to its caller.
		return nil, ErrAlreadySubscribed
	}

	return s.authorWithRecipes(ctx, &author, true, recipesLimit)
}

// Unsubscribe removes the subscription to the author
func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// Subscriptions returns a page of the authors the user follows,
// each with their recipes in short form.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, recipesLimit, page, limit int) (int64, []types.UserWithRecipesResponse, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var authors []models.User
	if err := base.
		Order("subscriptions.created_at, users.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error; err != nil {
		return 0, nil, err
	}

	results := make([]types.UserWithRecipesResponse, 0, len(authors))
	for i := range authors {
		resp, err := s.authorWithRecipes(ctx, &authors[i], true, recipesLimit)
		if err != nil {
			return 0, nil, err
		}
		results = append(results, *resp)
	}
	return count, results, nil
}

// authorWithRecipes builds the subscription projection of an author.
// recipesLimit of 0 means no limit.
func (s *UserService) authorWithRecipes(ctx context.Context, author *models.User, subscribed bool, recipesLimit int) (*types.UserWithRecipesResponse, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at, id")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	short := make([]types.ShortRecipeResponse, len(recipes))
	for i := range recipes {
		short[i] = shortRecipeResponse(&recipes[i])
	}

	return &types.UserWithRecipesResponse{
		UserResponse: userResponse(author, subscribed),
		Recipes:      short,
		RecipesCount: int(total),
	}, nil
}

// subscribedSet returns which of the given authors the viewer follows
func subscribedSet(ctx context.Context, db *gorm.DB, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return set, nil
	}

	var subs []models.Subscription
	if err := db.WithContext(ctx).
		Where("user_id = ? AND author_id IN ?", *viewer, authorIDs).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	for _, sub := range subs {
		set[sub.AuthorID] = true
	}
	return set, nil
}

func userResponse(user *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
		Avatar:       user.AvatarURL,
	}
}

func shortRecipeResponse(recipe *models.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
