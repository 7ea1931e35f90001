package services

import (
	"fmt"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
)

// UserService handles the admin-facing user operations and statistics.
type UserService struct {
	userRepo     repositories.UserRepository
	itemRepo     repositories.ItemRepository
	categoryRepo repositories.CategoryRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, itemRepo repositories.ItemRepository, categoryRepo repositories.CategoryRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
	}
}

// List retrieves all users. Password hashes never serialize.
func (s *UserService) List() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// SetActive toggles an account's active flag. An admin may not deactivate
// their own account; that request is rejected as a bad request, not as
// forbidden.
func (s *UserService) SetActive(targetID uint, active bool, requester *models.User) (*models.User, error) {
	if targetID == requester.ID && !active {
		return nil, fmt.Errorf("%w: you cannot deactivate your own account", ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return user, nil
}

// Stats summarizes the stores for the admin dashboard.
type Stats struct {
	TotalUsers       int64          `json:"totalUsers"`
	ActiveUsers      int64          `json:"activeUsers"`
	TotalItems       int64          `json:"totalItems"`
	ActiveItems      int64          `json:"activeItems"`
	TotalCategories  int64          `json:"totalCategories"`
	TotalStock       int            `json:"totalStock"`
	AveragePrice     float64        `json:"averagePrice"`
	ItemsPerCategory map[string]int `json:"itemsPerCategory"`
}

// Stats computes store-wide aggregates with linear scans.
func (s *UserService) Stats() (*Stats, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.GetAll()
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalUsers:       int64(len(users)),
		TotalItems:       int64(len(items)),
		TotalCategories:  int64(len(categories)),
		ItemsPerCategory: make(map[string]int),
	}
	for _, user := range users {
		if user.IsActive {
			stats.ActiveUsers++
		}
	}

	categoryNames := make(map[uint]string, len(categories))
	for _, category := range categories {
		categoryNames[category.ID] = category.Name
		stats.ItemsPerCategory[category.Name] = 0
	}

	var priceSum float64
	for _, item := range items {
		if item.IsActive {
			stats.ActiveItems++
		}
		stats.TotalStock += item.Stock
		priceSum += item.Price
		if item.CategoryID != nil {
			if name, ok := categoryNames[*item.CategoryID]; ok {
				stats.ItemsPerCategory[name]++
			}
		}
	}
	if len(items) > 0 {
		stats.AveragePrice = priceSum / float64(len(items))
	}
	return stats, nil
}
