package repository

import (
	"context"

	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"gorm.io/gorm"
)

// LeadQuery holds filters for listing leads
type LeadQuery struct {
	Skip   int
	Limit  int
	Status string
	Search string // matches name, business_name and phone
}

// CallQuery holds filters for listing calls
type CallQuery struct {
	Skip   int
	Limit  int
	Status string
}

// LeadRepository defines the interface for lead operations
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, q LeadQuery) ([]*domain.Lead, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Lead, error)
	Delete(ctx context.Context, id string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	ExistingPhones(ctx context.Context) (map[string]struct{}, error)
	GetBySource(ctx context.Context, source string) ([]*domain.Lead, error)
}

// CallRepository defines the interface for call record operations.
//
// The UpdateByProviderCallID variants return the number of affected rows;
// zero means no record matched the provider call id, which webhook
// reconciliation treats as a silent drop rather than an error.
type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error
	GetByID(ctx context.Context, id string) (*domain.Call, error)
	GetByProviderCallID(ctx context.Context, providerCallID string) (*domain.Call, error)
	List(ctx context.Context, q CallQuery) ([]*domain.Call, error)
	ListByLeadID(ctx context.Context, leadID string) ([]*domain.Call, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (int64, error)
	UpdateByProviderCallID(ctx context.Context, providerCallID string, updates map[string]interface{}) (int64, error)
	UpdateByProviderCallIDWhereStatusNot(ctx context.Context, providerCallID, excludedStatus string, updates map[string]interface{}) (int64, error)
}

// AgentRepository defines the interface for saved agent operations
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	List(ctx context.Context) ([]*domain.Agent, error)
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Agent, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// RepositoryManager combines all repositories
type RepositoryManager interface {
	Lead() LeadRepository
	Call() CallRepository
	Agent() AgentRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connection
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM
type GormRepositoryManager struct {
	db        *gorm.DB
	leadRepo  *GormLeadRepository
	callRepo  *GormCallRepository
	agentRepo *GormAgentRepository
}

// NewGormRepositoryManager creates a new GORM repository manager
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:        db,
		leadRepo:  NewGormLeadRepository(db),
		callRepo:  NewGormCallRepository(db),
		agentRepo: NewGormAgentRepository(db),
	}
}

// Lead returns the lead repository
func (m *GormRepositoryManager) Lead() LeadRepository {
	return m.leadRepo
}

// Call returns the call repository
func (m *GormRepositoryManager) Call() CallRepository {
	return m.callRepo
}

// Agent returns the agent repository
func (m *GormRepositoryManager) Agent() AgentRepository {
	return m.agentRepo
}

// Ping checks the database connection
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
