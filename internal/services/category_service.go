package services

import (
	"fmt"
	"log"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/pkg/events"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	mqClient     *events.Client
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repositories.CategoryRepository, mqClient *events.Client) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		mqClient:     mqClient,
	}
}

// List retrieves all categories.
func (s *CategoryService) List() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// Create stores a new category. Names are unique case-insensitively.
func (s *CategoryService) Create(name, description string) (*models.Category, error) {
	if existing, err := s.categoryRepo.GetByName(name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: category '%s' already exists", ErrConflict, existing.Name)
	}

	category := &models.Category{
		Name:        name,
		Description: description,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	if err := s.mqClient.Publish(events.CategoryCreated, category.Ref()); err != nil {
		log.Printf("Warning: failed to publish %s event for category %d: %v", events.CategoryCreated, category.ID, err)
	}
	return category, nil
}
