package usecase

import (
	"context"
	"time"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// UserUseCase casos de uso de identidad del bot: alta perezosa, registro y perfil.
type UserUseCase struct {
	users repository.UserRepository
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(users repository.UserRepository) *UserUseCase {
	return &UserUseCase{users: users}
}

// Ensure resuelve el usuario del update entrante, creándolo como guest si es
// su primer contacto, y refresca last_active.
func (uc *UserUseCase) Ensure(ctx context.Context, telegramID int64) (*entity.User, error) {
	user, err := uc.users.EnsureByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	_ = uc.users.TouchLastActive(ctx, telegramID)
	return user, nil
}

// CompleteRegistration fija rol, región y datos de contacto del flujo de registro.
func (uc *UserUseCase) CompleteRegistration(ctx context.Context, telegramID int64, in dto.RegisterProfileRequest) (*entity.User, error) {
	switch in.Role {
	case entity.RoleFarmer, entity.RoleBuyer, entity.RoleLogistic:
	default:
		return nil, domain.ErrValidation
	}
	if in.Region == "" {
		return nil, domain.ErrValidation
	}
	user, err := uc.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	user.Role = in.Role
	user.Region = in.Region
	user.Phone = in.Phone
	user.Company = in.Company
	user.Comment = in.Comment
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRegion cambia solo la región del perfil.
func (uc *UserUseCase) UpdateRegion(ctx context.Context, telegramID int64, region string) (*entity.User, error) {
	if region == "" {
		return nil, domain.ErrValidation
	}
	user, err := uc.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	user.Region = region
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Subscribe activa el plan pro por los días indicados.
func (uc *UserUseCase) Subscribe(ctx context.Context, telegramID int64, days int) (*entity.User, error) {
	if days <= 0 {
		return nil, domain.ErrValidation
	}
	user, err := uc.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	// Si ya es pro y no venció, los días se suman al vencimiento vigente.
	base := time.Now()
	if user.Plan == entity.PlanPro && user.PlanExpiresAt != nil && user.PlanExpiresAt.After(base) {
		base = *user.PlanExpiresAt
	}
	expires := base.Add(time.Duration(days) * 24 * time.Hour)
	user.Plan = entity.PlanPro
	user.PlanExpiresAt = &expires
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ProfileByID devuelve el usuario por id interno, o ErrUserNotFound.
func (uc *UserUseCase) ProfileByID(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// Profile devuelve el usuario por telegram_id, o ErrUserNotFound.
func (uc *UserUseCase) Profile(ctx context.Context, telegramID int64) (*entity.User, error) {
	user, err := uc.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
