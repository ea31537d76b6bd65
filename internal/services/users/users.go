package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UsersStorage interface {
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func())
}

type Options struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
}

type UserService struct {
	log          *slog.Logger
	storage      UsersStorage
	mailer       MailProvider
	taskExecutor TaskExecutor
	opts         Options
}

// New builds the service. mailer may be nil, in which case no welcome mail
// is sent.
func New(
	log *slog.Logger,
	storage UsersStorage,
	mailer MailProvider,
	taskExecutor TaskExecutor,
	opts Options,
) *UserService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &UserService{
		log:          log,
		storage:      storage,
		mailer:       mailer,
		taskExecutor: taskExecutor,
		opts:         opts,
	}
}

type CreateParams struct {
	Name     string
	Email    string
	Password string
	Age      *int
	Role     string
	IsActive *bool
}

// UpdateParams changes only the fields that are set.
type UpdateParams struct {
	Name     *string
	Email    *string
	Age      *int
	Role     *string
	IsActive *bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func storageErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrEmailTaken
	case errors.Is(err, storage.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

// ensureEmailFree fails with ErrEmailTaken when another user owns email.
func (s *UserService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.storage.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return storageErr(err)
	case existing.ID != ownerID:
		return ErrEmailTaken
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, params CreateParams) (*models.User, error) {
	const op = "users.UserService.Create"
	email := normalizeEmail(params.Email)
	log := s.log.With("op", op, "email", email)

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			log.Info("email already registered")
		} else {
			log.Error("Error checking email", "errMsg", err.Error())
		}
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.opts.BcryptCost)
	if err != nil {
		log.Error("Error hashing password", "errMsg", err.Error())
		return nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: hash,
		Age:          params.Age,
		Role:         params.Role,
		IsActive:     true,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	created, err := s.storage.Insert(ctx, user)
	if err != nil {
		err = storageErr(err)
		if errors.Is(err, ErrEmailTaken) {
			log.Info("email already registered")
		} else {
			log.Error("Error inserting user", "errMsg", err.Error())
		}
		return nil, err
	}
	if s.mailer != nil && s.taskExecutor != nil {
		s.taskExecutor.Add(func() {
			s.sendWelcomeEmail(created)
		})
	}
	return created, nil
}

func (s *UserService) sendWelcomeEmail(user *models.User) {
	log := s.log.With("op", "users.UserService.sendWelcomeEmail", "userID", user.ID)
	log.Info("sending welcome email")
	err := s.mailer.Send(user.Email, "user_welcome.html", map[string]any{
		"name":  user.Name,
		"email": user.Email,
	})
	if err != nil {
		log.Error("Error sending welcome email", "errMsg", err.Error())
	}
}

func (s *UserService) List(ctx context.Context, search string, f filters.Filters) ([]models.User, filters.ListPagination, error) {
	const op = "users.UserService.List"
	log := s.log.With("op", op, "search", search, "page", f.Page)
	users, total, err := s.storage.List(ctx, search, f)
	if err != nil {
		err = storageErr(err)
		log.Error("Error listing users", "errMsg", err.Error())
		return nil, filters.ListPagination{}, err
	}
	return users, filters.NewListPagination(f, total), nil
}

// Get returns ErrUserNotFound for ids that are not UUIDs.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "users.UserService.Get"
	log := s.log.With("op", op, "id", id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.storage.Get(ctx, id)
	if err != nil {
		err = storageErr(err)
		if errors.Is(err, ErrUserNotFound) {
			log.Info("user not found")
		} else {
			log.Error("Error getting user", "errMsg", err.Error())
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, params UpdateParams) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "id", id)
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		user.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if params.Age != nil {
		user.Age = params.Age
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		err = storageErr(err)
		log.Error("Error updating user", "errMsg", err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "id", id)
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		err = storageErr(err)
		if !errors.Is(err, ErrUserNotFound) {
			log.Error("Error deleting user", "errMsg", err.Error())
		}
		return err
	}
	return nil
}
