package auth

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
	"github.com/agrolink/agromercado/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase autenticación del panel: login y gestión de cuentas.
type AuthUseCase struct {
	admins repository.WebAdminRepository
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(admins repository.WebAdminRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{admins: admins, jwtCfg: jwtCfg}
}

// Login verifica username/password, genera JWT y retorna token + cuenta.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := uc.admins.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, admin.ID, admin.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Admin: dto.AdminResponse{ID: admin.ID, Username: admin.Username, Role: admin.Role},
	}, nil
}

// CreateAdmin da de alta una cuenta nueva del panel con password hasheada.
func (uc *AuthUseCase) CreateAdmin(ctx context.Context, username, password, role string) (*dto.AdminResponse, error) {
	if username == "" || len(password) < 8 {
		return nil, domain.ErrValidation
	}
	if role != entity.AdminRoleAdmin && role != entity.AdminRoleModerator {
		return nil, domain.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &entity.WebAdmin{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := uc.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return &dto.AdminResponse{ID: admin.ID, Username: admin.Username, Role: admin.Role}, nil
}

// Bootstrap garantiza la cuenta admin inicial en un despliegue nuevo.
// Si el username ya existe no toca nada.
func (uc *AuthUseCase) Bootstrap(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	existing, err := uc.admins.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = uc.CreateAdmin(ctx, username, password, entity.AdminRoleAdmin)
	return err
}
