package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"
)

// Googleのトークン検証結果。
type FederatedUser struct {
	Email string
	Name  string
}

// IDトークンの検証。実装は internal/infra/auth。
type GoogleTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (FederatedUser, error)
}

// 入力バリデーション。実装は internal/validator。
type AuthValidator interface {
	ValidateSignup(ctx context.Context, name, email, password string) error
	ValidateLogin(ctx context.Context, email, password string) error
}

type AuthUsecase struct {
	userRepo  repo.UserRepository
	validator AuthValidator
	verifier  GoogleTokenVerifier
	jwtSecret string
}

func NewAuthUsecase(userRepo repo.UserRepository, v AuthValidator, verifier GoogleTokenVerifier, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  userRepo,
		validator: v,
		verifier:  verifier,
		jwtSecret: jwtSecret,
	}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token"`
}

type UserDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	LoyaltyPoints int64  `json:"loyalty_points"`
}

// ログイン結果。Tokenはhandler側でhttpOnly Cookieに載せる。
type AuthResult struct {
	Token string
	User  UserDTO
}

const tokenTTL = 24 * time.Hour

func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (UserDTO, error) {
	if err := u.validator.ValidateSignup(ctx, in.Name, in.Email, in.Password); err != nil {
		if errors.Is(err, validator.ErrEmailAlreadyUsed) {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "hash error")
	}

	now := time.Now()
	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(*user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err == repo.ErrNotFound {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// Googleログイン専用ユーザはパスワードを持たない
	if user.PasswordHash == "" {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return AuthResult{}, NewHTTPError(http.StatusForbidden, "account disabled")
	}

	return u.issueSession(ctx, *user)
}

// GoogleのIDトークンでログインする。未登録ならその場で作る（パスワードなし）。
func (u *AuthUsecase) GoogleLogin(ctx context.Context, in GoogleLoginInput) (AuthResult, error) {
	if in.IDToken == "" {
		return AuthResult{}, NewHTTPError(http.StatusBadRequest, "id_token is required")
	}

	fu, err := u.verifier.VerifyIDToken(ctx, in.IDToken)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "invalid google token")
	}

	user, err := u.userRepo.FindByEmail(ctx, fu.Email)
	if err == repo.ErrNotFound {
		now := time.Now()
		nu := &model.User{
			Name:      fu.Name,
			Email:     fu.Email,
			Role:      model.RoleCustomer,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if cerr := u.userRepo.Create(ctx, nu); cerr != nil {
			return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		user = nu
	} else if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !user.IsActive {
		return AuthResult{}, NewHTTPError(http.StatusForbidden, "account disabled")
	}

	return u.issueSession(ctx, *user)
}

func (u *AuthUsecase) issueSession(ctx context.Context, user model.User) (AuthResult, error) {
	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	// 最終ログインの更新失敗でログイン自体は落とさない
	_ = u.userRepo.Update(ctx, &user)

	token, err := u.signToken(user, now)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "token error")
	}

	return AuthResult{Token: token, User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) signToken(user model.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.jwtSecret))
}

func toUserDTO(u model.User) UserDTO {
	return UserDTO{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          string(u.Role),
		LoyaltyPoints: u.LoyaltyPoints,
	}
}
