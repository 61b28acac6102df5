package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/domain/output"
	"github.com/dkazarin/molva/internal/infra/adapters/memory"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
	"github.com/dkazarin/molva/internal/infra/auth"
)

const tokenTTL = 24 * time.Hour

// UserUsecase определяет интерфейс для работы с пользователями
type UserUsecase interface {
	// Регистрация и аутентификация
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)
	GenerateJWT(user *models.User) (string, error)

	// Получение пользователей
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SearchUsers(ctx context.Context, query string) ([]output.OnlineUserInfo, error)

	// Онлайн пользователи
	GetOnlineUsers(ctx context.Context) ([]output.OnlineUserInfo, error)
}

type userUsecase struct {
	jwtSecret []byte

	userRepo repository.UserRepository
	sessions memory.SessionRegistry
}

func NewUserUsecase(
	jwtSecret []byte,
	userRepo repository.UserRepository,
	sessions memory.SessionRegistry,
) UserUsecase {
	return &userUsecase{
		jwtSecret: jwtSecret,
		userRepo:  userRepo,
		sessions:  sessions,
	}
}

// CreateUser создает нового пользователя с хешированным паролем
func (uc *userUsecase) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if existing, err := uc.userRepo.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.NewUser()
	user.Username = username
	user.Password = string(hashedPassword)

	if err = uc.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// Убираем хеш из ответа
	user.Password = ""
	return user, nil
}

// ValidateCredentials проверяет учетные данные пользователя
func (uc *userUsecase) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := uc.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthenticated
	}

	user.Password = ""
	return user, nil
}

// GenerateJWT генерирует JWT токен для пользователя
func (uc *userUsecase) GenerateJWT(user *models.User) (string, error) {
	return auth.IssueToken(uc.jwtSecret, user.ID, tokenTTL)
}

// GetUserByID получает пользователя по ID
func (uc *userUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return uc.userRepo.GetUserByID(ctx, id)
}

// SearchUsers ищет пользователей по подстроке имени
func (uc *userUsecase) SearchUsers(ctx context.Context, query string) ([]output.OnlineUserInfo, error) {
	users, err := uc.userRepo.SearchByUsername(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	result := make([]output.OnlineUserInfo, 0, len(users))

	for _, user := range users {
		result = append(result, output.OnlineUserInfo{
			ID:       user.ID,
			Username: user.Username,
		})
	}

	return result, nil
}

// GetOnlineUsers получает список всех онлайн пользователей
func (uc *userUsecase) GetOnlineUsers(ctx context.Context) ([]output.OnlineUserInfo, error) {
	connectedUserIDs := uc.sessions.Online()

	result := make([]output.OnlineUserInfo, 0, len(connectedUserIDs))

	for _, userID := range connectedUserIDs {
		user, err := uc.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			continue // Пропускаем пользователей, которых не можем найти
		}

		result = append(result, output.OnlineUserInfo{
			ID:       user.ID,
			Username: user.Username,
		})
	}

	return result, nil
}
