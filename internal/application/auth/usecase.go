package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	appdto "github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
	"github.com/AymanElMikh/bmw/pkg/config"
	"github.com/AymanElMikh/bmw/pkg/jwt"
)

// UseCase registro y login de usuarios con emisión de JWT.
type UseCase struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

// NewUseCase construye el caso de uso.
func NewUseCase(userRepo repository.UserRepository, jwtCfg config.JWTConfig) *UseCase {
	return &UseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Register crea un usuario nuevo. El rol por defecto es VIEWER.
func (uc *UseCase) Register(ctx context.Context, in appdto.RegisterRequest) (*appdto.UserResponse, error) {
	var reasons []string
	if in.Name == "" {
		reasons = append(reasons, "name es obligatorio")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		reasons = append(reasons, "email inválido")
	}
	if len(in.Password) < 8 {
		reasons = append(reasons, "password debe tener al menos 8 caracteres")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleViewer
	}
	if role != entity.RoleAdmin && role != entity.RoleProjectLeader && role != entity.RoleViewer {
		reasons = append(reasons, fmt.Sprintf("rol %q desconocido", role))
	}
	if len(reasons) > 0 {
		return nil, &domainbilling.ValidationError{Reasons: reasons}
	}

	if existing, err := uc.userRepo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear password: %w", err)
	}

	user := &entity.User{
		UserID:       uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica credenciales y emite un token de acceso.
func (uc *UseCase) Login(ctx context.Context, in appdto.LoginRequest) (*appdto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := uc.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.UserID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.Expiration)
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	return &appdto.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// GetUser obtiene un usuario por id.
func (uc *UseCase) GetUser(ctx context.Context, id string) (*appdto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// ListUsers lista todos los usuarios (solo ADMIN en la capa HTTP).
func (uc *UseCase) ListUsers(ctx context.Context) ([]appdto.UserResponse, error) {
	users, err := uc.userRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]appdto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

func toUserResponse(u *entity.User) *appdto.UserResponse {
	return &appdto.UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
