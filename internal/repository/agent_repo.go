package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"gorm.io/gorm"
)

// GormAgentRepository handles database operations for saved agents
type GormAgentRepository struct {
	db *gorm.DB
}

// NewGormAgentRepository creates a new agent repository
func NewGormAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// Create creates a new agent record
func (r *GormAgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now()
	}
	agent.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

// List retrieves all saved agents, newest first
func (r *GormAgentRepository) List(ctx context.Context) ([]*domain.Agent, error) {
	var agents []*domain.Agent
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// GetByID retrieves an agent by ID, returning nil when not found
func (r *GormAgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	var agent domain.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}

// Update applies field updates to an agent, returning nil when not found
func (r *GormAgentRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Agent, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&domain.Agent{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update agent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete deletes an agent by ID, reporting whether a record was removed
func (r *GormAgentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Agent{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete agent: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

var _ AgentRepository = (*GormAgentRepository)(nil)
