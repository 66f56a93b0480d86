package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/giftify-next/internal/cache"
	"github.com/giftify-next/internal/config"
	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 用户注册输入
type RegisterInput struct {
	Email       string
	Password    string
	Role        string
	FirstName   string
	LastName    string
	DisplayName string
}

// UpdateProfileInput 资料更新输入（nil 字段不改动）
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	DisplayName *string
	AvatarURL   *string
	Bio         *string
	Categories  []string
	Onboarded   *bool
}

// UpdateFanSettingsInput 粉丝设置更新输入
type UpdateFanSettingsInput struct {
	DefaultPickupAddress *PickupAddressInput
	ClearDefaultAddress  bool
	ConfirmBeforeSubmit  *bool
	Notifications        *models.FanNotificationPrefs
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg.UserJWT)
	}
	expiresAt := time.Now().Add(time.Duration(resolvedHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Register 用户注册（仅开放 fan / creator 两种角色）
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = constants.RoleFan
	}
	if role != constants.RoleFan && role != constants.RoleCreator {
		return nil, "", time.Time{}, ErrRoleInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = resolveNicknameFromEmail(normalized)
	}
	user := &models.User{
		Email:           normalized,
		PasswordHash:    string(hashedPassword),
		Role:            role,
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		DisplayName:     displayName,
		Status:          constants.UserStatusActive,
		FanSettingsJSON: fanSettingsToJSON(defaultFanSettings()),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.issueSession(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Login 用户登录
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	return s.LoginWithRememberMe(email, password, false)
}

// LoginWithRememberMe 用户登录（支持记住我）
func (s *UserAuthService) LoginWithRememberMe(email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	expireHours := resolveUserJWTExpireHours(s.cfg.UserJWT)
	if rememberMe {
		expireHours = resolveRememberMeExpireHours(s.cfg.UserJWT)
	}
	token, expiresAt, err := s.issueSession(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// issueSession 签发 Token 并刷新登录状态与缓存
func (s *UserAuthService) issueSession(user *models.User, expireHours int) (string, time.Time, error) {
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return token, expiresAt, nil
}

// ChangePassword 登录态修改密码
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	now := time.Now()
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateProfile 更新用户资料
func (s *UserAuthService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	profile := userProfileFromJSON(user.ProfileJSON)
	updated := false
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
		updated = true
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
		updated = true
	}
	if input.DisplayName != nil {
		if trimmed := strings.TrimSpace(*input.DisplayName); trimmed != "" {
			user.DisplayName = trimmed
			updated = true
		}
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = strings.TrimSpace(*input.AvatarURL)
		updated = true
	}
	if input.Bio != nil {
		profile.Bio = strings.TrimSpace(*input.Bio)
		updated = true
	}
	if input.Categories != nil {
		profile.Categories = normalizeCategoryList(input.Categories)
		updated = true
	}
	if input.Onboarded != nil {
		user.Onboarded = *input.Onboarded
		updated = true
	}

	if !updated {
		return nil, ErrProfileEmpty
	}

	user.ProfileJSON = userProfileToJSON(profile)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetFanSettings 读取粉丝设置
func (s *UserAuthService) GetFanSettings(userID uint) (models.FanSettings, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return models.FanSettings{}, err
	}
	if user == nil {
		return models.FanSettings{}, ErrNotFound
	}
	return fanSettingsFromJSON(user.FanSettingsJSON), nil
}

// UpdateFanSettings 更新粉丝设置（默认地址、提交确认、通知偏好）
func (s *UserAuthService) UpdateFanSettings(userID uint, input UpdateFanSettingsInput) (models.FanSettings, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return models.FanSettings{}, err
	}
	if user == nil {
		return models.FanSettings{}, ErrNotFound
	}

	settings := fanSettingsFromJSON(user.FanSettingsJSON)
	if input.ClearDefaultAddress {
		settings.DefaultPickupAddress = nil
	} else if input.DefaultPickupAddress != nil {
		settings.DefaultPickupAddress = &models.PickupAddress{
			Street:  strings.TrimSpace(input.DefaultPickupAddress.Street),
			City:    strings.TrimSpace(input.DefaultPickupAddress.City),
			State:   strings.TrimSpace(input.DefaultPickupAddress.State),
			Zip:     strings.TrimSpace(input.DefaultPickupAddress.Zip),
			Country: strings.TrimSpace(input.DefaultPickupAddress.Country),
		}
	}
	if input.ConfirmBeforeSubmit != nil {
		settings.ConfirmBeforeSubmit = *input.ConfirmBeforeSubmit
	}
	if input.Notifications != nil {
		settings.Notifications = *input.Notifications
	}

	user.FanSettingsJSON = fanSettingsToJSON(settings)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return models.FanSettings{}, err
	}
	return settings, nil
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRememberMeExpireHours(cfg config.JWTConfig) int {
	if cfg.RememberMeExpireHours <= 0 {
		return resolveUserJWTExpireHours(cfg)
	}
	return cfg.RememberMeExpireHours
}

func resolveNicknameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func normalizeCategoryList(raw []string) models.StringArray {
	result := make(models.StringArray, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" || seen[strings.ToLower(trimmed)] {
			continue
		}
		seen[strings.ToLower(trimmed)] = true
		result = append(result, trimmed)
	}
	return result
}

func userProfileFromJSON(raw models.JSON) models.UserProfile {
	if len(raw) == 0 {
		return models.UserProfile{}
	}
	bytes, err := json.Marshal(raw)
	if err != nil {
		return models.UserProfile{}
	}
	var profile models.UserProfile
	if err := json.Unmarshal(bytes, &profile); err != nil {
		return models.UserProfile{}
	}
	return profile
}

func userProfileToJSON(profile models.UserProfile) models.JSON {
	bytes, err := json.Marshal(profile)
	if err != nil {
		return models.JSON{}
	}
	var result models.JSON
	if err := json.Unmarshal(bytes, &result); err != nil {
		return models.JSON{}
	}
	return result
}
