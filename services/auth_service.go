package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace-hub/logger"
	"marketplace-hub/models"
	"marketplace-hub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users   repository.UserRepository
	vendors repository.VendorRepository
	tokens  *TokenManager
}

func NewAuthService(users repository.UserRepository, vendors repository.VendorRepository, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, vendors: vendors, tokens: tokens}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  models.Address
	Role     string

	BusinessName string
	BusinessType string
	GSTNumber    string
	Description  string
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	ID         primitive.ObjectID `json:"_id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Role       models.Role        `json:"role"`
	VendorData *models.Vendor     `json:"vendorData,omitempty"`
	Token      string             `json:"token"`
}

type Profile struct {
	User       *models.User   `json:"user"`
	VendorData *models.Vendor `json:"vendorData,omitempty"`
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a buyer or vendor account. Admin accounts cannot self-register.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role := models.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		r, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, validationError("Invalid role")
		}
		role = r
	}
	switch role {
	case models.RoleUser, models.RoleVendor:
	case models.RoleAdmin:
		return nil, validationError("Invalid role")
	}
	return s.create(ctx, in, role)
}

// CreateAdmin bootstraps an administrator account.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *AuthService) create(ctx context.Context, in RegisterInput, role models.Role) (*AuthResult, error) {
	log := logger.FromContext(ctx)

	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	email := models.NormalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" || in.Phone == "" {
		return nil, validationError("Please provide all required fields")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Server error", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, internal("Server error", err)
	}

	user := &models.User{
		Name:      in.Name,
		Email:     email,
		Password:  hash,
		Phone:     in.Phone,
		Address:   in.Address,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, internal("Server error", err)
	}
	log.Info("account registered", zap.String("user_id", user.ID.Hex()), zap.String("role", string(role)))

	var vendor *models.Vendor
	if role == models.RoleVendor {
		vendor = &models.Vendor{
			UserID:       user.ID,
			BusinessName: strings.TrimSpace(in.BusinessName),
			BusinessType: strings.TrimSpace(in.BusinessType),
			GSTNumber:    strings.TrimSpace(in.GSTNumber),
			Description:  strings.TrimSpace(in.Description),
			CreatedAt:    user.CreatedAt,
		}
		if err := s.vendors.Create(ctx, vendor); err != nil {
			// Without its profile the account is unusable and would block a retry with the same email.
			if derr := s.users.Delete(context.WithoutCancel(ctx), user.ID); derr != nil {
				log.Error("orphaned vendor account", zap.String("user_id", user.ID.Hex()), zap.Error(derr))
			}
			return nil, internal("Server error", err)
		}
	}

	return s.result(user, vendor)
}

// Login never tells the caller which of email, password or account state was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContext(ctx)

	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("Please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("login rejected", zap.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, internal("Server error", err)
	}
	if !user.IsActive {
		log.Info("login rejected", zap.String("reason", "inactive"), zap.String("user_id", user.ID.Hex()))
		return nil, ErrInvalidCredentials
	}
	if !checkPasswordHash(password, user.Password) {
		log.Info("login rejected", zap.String("reason", "bad_password"), zap.String("user_id", user.ID.Hex()))
		return nil, ErrInvalidCredentials
	}

	var vendor *models.Vendor
	if user.Role == models.RoleVendor {
		vendor, err = s.vendors.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, internal("Server error", err)
		}
	}
	return s.result(user, vendor)
}

func (s *AuthService) result(user *models.User, vendor *models.Vendor) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, internal("Failed to generate token", err)
	}
	return &AuthResult{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		VendorData: vendor,
		Token:      token,
	}, nil
}

// Authenticate turns a bearer token into a Principal. Deactivated and deleted
// accounts are rejected even while their tokens are still unexpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return Principal{}, ErrNotAuthorized
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return Principal{}, ErrNotAuthorized
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Principal{}, ErrNotAuthorized
		}
		return Principal{}, internal("Server error", err)
	}
	if !user.IsActive {
		return Principal{}, ErrNotAuthorized
	}
	role, err := models.ParseRole(string(user.Role))
	if err != nil {
		return Principal{}, ErrNotAuthorized
	}
	return Principal{UserID: user.ID, Role: role}, nil
}

func (s *AuthService) Profile(ctx context.Context, p Principal) (*Profile, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("Server error", err)
	}

	profile := &Profile{User: user}
	if user.Role == models.RoleVendor {
		vendor, err := s.vendors.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, internal("Server error", err)
		}
		profile.VendorData = vendor
	}
	return profile, nil
}

type ProfileUpdate struct {
	Name    string
	Phone   string
	Address *models.Address
}

// UpdateProfile changes only the fields that were sent non-empty.
func (s *AuthService) UpdateProfile(ctx context.Context, p Principal, in ProfileUpdate) (*models.User, error) {
	var upd repository.UserUpdate
	if name := strings.TrimSpace(in.Name); name != "" {
		upd.Name = &name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		upd.Phone = &phone
	}
	upd.Address = in.Address

	user, err := s.users.Update(ctx, p.UserID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("Server error", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, p Principal, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return validationError("Please provide old and new password")
	}

	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("User not found")
		}
		return internal("Server error", err)
	}
	if !checkPasswordHash(oldPassword, user.Password) {
		return &AppError{Kind: KindUnauthorized, Message: "Old password is incorrect"}
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return internal("Failed to hash password", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return internal("Failed to update password", err)
	}
	logger.FromContext(ctx).Info("password changed", zap.String("user_id", user.ID.Hex()))
	return nil
}
