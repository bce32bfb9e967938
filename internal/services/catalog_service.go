package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

type catalogService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCatalogService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CatalogService {
	return &catalogService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== SUBJECTS =====

func (s *catalogService) CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	subject := &models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.repo.Subject().Create(ctx, s.db, subject); err != nil {
		s.logger.Error("Failed to create subject", "name", subject.Name, "error", err)
		return nil, storeError("create subject", err, nil, ErrDuplicate)
	}

	s.logger.Info("Subject created", "subject_id", subject.ID, "name", subject.Name)
	return subject, nil
}

// GetSubject returns the subject with its categories
func (s *catalogService) GetSubject(ctx context.Context, id uint) (*models.Subject, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	subject, err := s.repo.Subject().GetByID(ctx, s.db, id)
	if err != nil {
		return nil, storeError("get subject", err, ErrSubjectNotFound, nil)
	}
	return subject, nil
}

func (s *catalogService) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.repo.Subject().List(ctx, s.db)
	if err != nil {
		return nil, internalError("list subjects", err)
	}
	return subjects, nil
}

// ===== CATEGORIES =====

func (s *catalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SubjectID:   req.SubjectID,
	}
	if err := s.repo.Category().Create(ctx, s.db, category); err != nil {
		s.logger.Error("Failed to create category",
			"name", category.Name,
			"subject_id", req.SubjectID,
			"error", err)
		return nil, storeError("create category", err, ErrSubjectNotFound, ErrDuplicate)
	}

	s.logger.Info("Category created", "category_id", category.ID, "subject_id", category.SubjectID)
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, subjectID *uint) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx, s.db, subjectID)
	if err != nil {
		return nil, internalError("list categories", err)
	}
	return categories, nil
}

// ===== USERS =====

func (s *catalogService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}

	existing, err := s.repo.User().GetByEmail(ctx, s.db, user.Email)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, internalError("check user email", err)
	}
	if existing != nil {
		return nil, ErrDuplicate
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		s.logger.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, storeError("create user", err, nil, ErrDuplicate)
	}

	s.logger.Info("User created", "user_id", user.ID)
	return user, nil
}

// ListUsers pages through users, optionally matching name or email
func (s *catalogService) ListUsers(ctx context.Context, query string, limit, offset int) (*UserListResponse, error) {
	if limit <= 0 {
		limit = defaultUserPageSize
	}
	if limit > maxUserPageSize {
		limit = maxUserPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.repo.User().List(ctx, s.db, repositories.UserFilters{
		Query:  query,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, internalError("list users", err)
	}

	return &UserListResponse{
		Users:  users,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *catalogService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		return nil, storeError("get user", err, ErrUserNotFound, nil)
	}
	return user, nil
}
