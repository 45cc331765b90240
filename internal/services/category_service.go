package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type categoryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCategoryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) CategoryService {
	return &categoryService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *categoryService) Create(ctx context.Context, req *validator.CategoryCreateRequest, userID uint) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, userID, "create"); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        models.Slugify(req.Name),
		Description: req.Description,
	}

	if err := s.repo.Category().Create(ctx, s.db, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req *validator.CategoryUpdateRequest, userID uint) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, userID, "update"); err != nil {
		return nil, err
	}

	category, err := s.repo.Category().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
		category.Slug = models.Slugify(*req.Name)
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	category.UpdatedAt = time.Now()

	if err := s.repo.Category().Update(ctx, s.db, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uint, userID uint) error {
	if err := s.requireAdmin(ctx, userID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Category().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted", "category_id", id, "deleted_by", userID)
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.Category().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.repo.Category().List(ctx, s.db)
}

func (s *categoryService) requireAdmin(ctx context.Context, userID uint, action string) error {
	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return NewPermissionError(userID, 0, "category", action, "admin role required")
	}
	return nil
}
