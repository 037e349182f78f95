package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"gorm.io/gorm"
)

// GormLeadRepository handles database operations for leads
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new lead repository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// Create creates a new lead
func (r *GormLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	lead.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead by ID, returning nil when not found
func (r *GormLeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// List retrieves leads ordered by creation time with optional filters
func (r *GormLeadRepository) List(ctx context.Context, q LeadQuery) ([]*domain.Lead, error) {
	query := r.db.WithContext(ctx).Model(&domain.Lead{})

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("name ILIKE ? OR business_name ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}

	var leads []*domain.Lead
	if err := query.Order("created_at DESC").Offset(q.Skip).Limit(q.Limit).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// Count returns the total number of leads, optionally filtered by status
func (r *GormLeadRepository) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// Update applies a partial update and returns the updated lead, or nil when
// no lead matched
func (r *GormLeadRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Lead, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a lead by ID, reporting whether a record was removed
func (r *GormLeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Lead{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// PhoneExists checks whether a lead with this phone number already exists
func (r *GormLeadRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check phone existence: %w", err)
	}
	return count > 0, nil
}

// ExistingPhones returns the set of all phone numbers currently stored.
// Bulk import fetches this once instead of probing per row.
func (r *GormLeadRepository) ExistingPhones(ctx context.Context) (map[string]struct{}, error) {
	var phones []string
	if err := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("phone <> ''").Pluck("phone", &phones).Error; err != nil {
		return nil, fmt.Errorf("failed to load existing phones: %w", err)
	}

	set := make(map[string]struct{}, len(phones))
	for _, phone := range phones {
		set[phone] = struct{}{}
	}
	return set, nil
}

// GetBySource retrieves all leads from a specific source
func (r *GormLeadRepository) GetBySource(ctx context.Context, source string) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	if err := r.db.WithContext(ctx).Where("source = ?", source).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to get leads by source: %w", err)
	}
	return leads, nil
}

var _ LeadRepository = (*GormLeadRepository)(nil)
