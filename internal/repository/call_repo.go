package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"gorm.io/gorm"
)

// GormCallRepository handles database operations for call records
type GormCallRepository struct {
	db *gorm.DB
}

// NewGormCallRepository creates a new call repository
func NewGormCallRepository(db *gorm.DB) *GormCallRepository {
	return &GormCallRepository{db: db}
}

// Create creates a new call record
func (r *GormCallRepository) Create(ctx context.Context, call *domain.Call) error {
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	call.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(call).Error; err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

// GetByID retrieves a call by internal ID, returning nil when not found
func (r *GormCallRepository) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	var call domain.Call
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&call).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

// GetByProviderCallID retrieves a call by the provider-assigned call id,
// returning nil when not found
func (r *GormCallRepository) GetByProviderCallID(ctx context.Context, providerCallID string) (*domain.Call, error) {
	var call domain.Call
	if err := r.db.WithContext(ctx).Where("provider_call_id = ?", providerCallID).First(&call).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call by provider call id: %w", err)
	}
	return &call, nil
}

// List retrieves calls ordered by start time descending with optional filters
func (r *GormCallRepository) List(ctx context.Context, q CallQuery) ([]*domain.Call, error) {
	query := r.db.WithContext(ctx).Model(&domain.Call{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var calls []*domain.Call
	if err := query.Order("start_time DESC").Offset(q.Skip).Limit(q.Limit).Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	return calls, nil
}

// ListByLeadID retrieves all calls for a lead, newest first
func (r *GormCallRepository) ListByLeadID(ctx context.Context, leadID string) ([]*domain.Call, error) {
	var calls []*domain.Call
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("start_time DESC").Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to list calls for lead: %w", err)
	}
	return calls, nil
}

// Count returns the total number of calls, optionally filtered by status
func (r *GormCallRepository) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Call{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count calls: %w", err)
	}
	return count, nil
}

// Update applies a partial update by internal ID
func (r *GormCallRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&domain.Call{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update call: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateByProviderCallID applies a partial update keyed by provider call id.
// Zero affected rows means no record matched.
func (r *GormCallRepository) UpdateByProviderCallID(ctx context.Context, providerCallID string, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&domain.Call{}).
		Where("provider_call_id = ?", providerCallID).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update call by provider call id: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateByProviderCallIDWhereStatusNot applies a partial update keyed by
// provider call id, skipping records already in the excluded status. Used to
// keep webhook replays from regressing a finished call.
func (r *GormCallRepository) UpdateByProviderCallIDWhereStatusNot(ctx context.Context, providerCallID, excludedStatus string, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&domain.Call{}).
		Where("provider_call_id = ? AND status <> ?", providerCallID, excludedStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update call by provider call id: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ CallRepository = (*GormCallRepository)(nil)
