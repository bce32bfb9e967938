package services

import (
	"context"
	"log/slog"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

type quizService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	cacheManager   *cache.CacheManager
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cacheManager *cache.CacheManager) QuizService {
	return &quizService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		cacheManager:   cacheManager,
	}
}

// ===== CORE QUIZ OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error) {
	s.logger.Info("Creating quiz",
		"title", req.Title,
		"subject_id", req.SubjectID,
		"category_id", req.CategoryID,
		"questions", len(req.Questions))

	if err := s.validator.ValidateQuiz(req); err != nil {
		return nil, newValidationError(err)
	}

	quiz := buildQuiz(req)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := checkQuizReferences(ctx, txRepo, quiz.SubjectID, quiz.CategoryID); err != nil {
			return err
		}

		// One nested insert: quiz, questions, then options and pairs
		if err := txRepo.Quiz().Create(ctx, nil, quiz); err != nil {
			return storeError("create quiz", err, ErrReferenceNotFound, ErrDuplicate)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create quiz", "title", req.Title, "error", err)
		return nil, asServiceError("create quiz", err)
	}

	created, err := s.GetByID(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.QuizCreated, quizEventData(created))

	s.logger.Info("Quiz created successfully",
		"quiz_id", created.ID,
		"questions", len(created.Questions))

	return created, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		return nil, storeError("get quiz", err, ErrQuizNotFound, nil)
	}

	return quiz, nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error) {
	filters = normalizeQuizFilters(filters)

	quizzes, total, err := s.repo.Quiz().List(ctx, s.db, filters)
	if err != nil {
		return nil, internalError("list quizzes", err)
	}

	return &QuizListResponse{
		Quizzes: quizzes,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// Update replaces the quiz's scalars and its entire question graph atomically.
// Every question gets a new identity; nothing is merged.
func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	s.logger.Info("Updating quiz",
		"quiz_id", id,
		"questions", len(req.Questions))

	if err := validID(id); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateQuiz(req); err != nil {
		return nil, newValidationError(err)
	}

	replacement := buildQuiz(req)
	replacement.ID = id

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		quizRepo := txRepo.Quiz()

		if _, err := quizRepo.GetByID(ctx, nil, id); err != nil {
			return storeError("load quiz", err, ErrQuizNotFound, nil)
		}

		if err := checkQuizReferences(ctx, txRepo, replacement.SubjectID, replacement.CategoryID); err != nil {
			return err
		}

		if err := quizRepo.DeleteQuestionChildren(ctx, nil, id); err != nil {
			return internalError("delete question children", err)
		}
		if err := quizRepo.DeleteQuestions(ctx, nil, id); err != nil {
			return internalError("delete questions", err)
		}

		scalars := *replacement
		scalars.Questions = nil
		if err := quizRepo.UpdateFields(ctx, nil, &scalars); err != nil {
			return storeError("update quiz", err, ErrReferenceNotFound, ErrDuplicate)
		}

		for i := range replacement.Questions {
			question := &replacement.Questions[i]
			question.QuizID = id
			if err := quizRepo.CreateQuestion(ctx, nil, question); err != nil {
				return storeError("create question", err, ErrQuizNotFound, ErrDuplicate)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update quiz", "quiz_id", id, "error", err)
		return nil, asServiceError("update quiz", err)
	}

	// Subject membership may have changed
	cache.InvalidateRankings(ctx, s.cacheManager)

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.QuizUpdated, quizEventData(updated))

	s.logger.Info("Quiz updated successfully",
		"quiz_id", id,
		"questions", len(updated.Questions))

	return updated, nil
}

// Delete removes the quiz with its questions, attempts and their answers
func (s *quizService) Delete(ctx context.Context, id uint) (*DeleteResponse, error) {
	s.logger.Info("Deleting quiz", "quiz_id", id)

	if err := validID(id); err != nil {
		return nil, err
	}

	exists, err := s.repo.Quiz().Exists(ctx, s.db, id)
	if err != nil {
		return nil, internalError("check quiz", err)
	}
	if !exists {
		return nil, ErrQuizNotFound
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		deleted, err := txRepo.Quiz().DeleteCascade(ctx, nil, id)
		if err != nil {
			return internalError("delete quiz", err)
		}
		// Removed by someone else after the existence check
		if deleted == 0 {
			return ErrQuizNotFound
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete quiz", "quiz_id", id, "error", err)
		return nil, asServiceError("delete quiz", err)
	}

	cache.InvalidateRankings(ctx, s.cacheManager)

	publishEvent(ctx, s.eventPublisher, s.logger, events.QuizDeleted, events.QuizEventData{QuizID: id})

	s.logger.Info("Quiz deleted successfully", "quiz_id", id)

	return &DeleteResponse{ID: id, Deleted: true}, nil
}
