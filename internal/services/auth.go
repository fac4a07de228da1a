package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, username, email, password, fullName string) (*types.RegisteredUser, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	// Authenticate validates an access token (signature and presence in
	// the token table) and returns the account it belongs to.
	Authenticate(ctx context.Context, accessToken string) (*types.RegisteredUser, error)
	GetUser(ctx context.Context, id uuid.UUID) (*types.RegisteredUser, error)
	AccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	regUserRepo  repos.RegisteredUserRepo
	tokenRepo    repos.UserTokenRepo
	interactions InteractionService
	jwtSecretKey string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	regUserRepo repos.RegisteredUserRepo,
	tokenRepo repos.UserTokenRepo,
	interactions InteractionService,
	jwtSecretKey string,
	accessTTL, refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		regUserRepo:  regUserRepo,
		tokenRepo:    tokenRepo,
		interactions: interactions,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, username, email, password, fullName string) (*types.RegisteredUser, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}

	if taken, err := as.regUserRepo.UsernameExists(ctx, nil, username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("username already taken")
	}
	if taken, err := as.regUserRepo.EmailExists(ctx, nil, email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.RegisteredUser{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: string(hashed),
		FullName: fullName,
		IsActive: true,
	}
	if err := as.regUserRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// The recommendation side keys its user by the account ID and starts
	// with an empty session.
	if err := as.interactions.EnsureUser(ctx, user.ID.String()); err != nil {
		as.log.Warn("Failed to create recommendation user", "error", err)
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := as.regUserRepo.GetByUsername(ctx, nil, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return as.issueTokens(ctx, user)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.tokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("unknown refresh token")
		}
		if existing.ExpiresAt.Before(time.Now()) {
			_ = as.tokenRepo.DeleteByID(ctx, tx, existing.ID)
			return fmt.Errorf("refresh token expired")
		}
		user, err := as.regUserRepo.GetByID(ctx, tx, existing.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("no user for refresh token")
		}
		if err := as.tokenRepo.DeleteByID(ctx, tx, existing.ID); err != nil {
			return err
		}
		pair, err = as.issueTokensTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context, accessToken string) error {
	token, err := as.tokenRepo.GetByAccessToken(ctx, nil, accessToken)
	if err != nil {
		return err
	}
	if token == nil {
		return nil
	}
	return as.tokenRepo.DeleteByID(ctx, nil, token.ID)
}

func (as *authService) Authenticate(ctx context.Context, accessToken string) (*types.RegisteredUser, error) {
	parsed, err := jwt.ParseWithClaims(accessToken, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	// Logout deletes the row, which revokes the token before its expiry.
	stored, err := as.tokenRepo.GetByAccessToken(ctx, nil, accessToken)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("token revoked")
	}

	user, err := as.regUserRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("account unavailable")
	}
	return user, nil
}

func (as *authService) GetUser(ctx context.Context, id uuid.UUID) (*types.RegisteredUser, error) {
	return as.regUserRepo.GetByID(ctx, nil, id)
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issueTokens(ctx context.Context, user *types.RegisteredUser) (*TokenPair, error) {
	var pair *TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pair, err = as.issueTokensTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) issueTokensTx(ctx context.Context, tx *gorm.DB, user *types.RegisteredUser) (*TokenPair, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken := uuid.New().String()
	if err := as.tokenRepo.Create(ctx, tx, &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
	}); err != nil {
		return nil, fmt.Errorf("store user token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}
