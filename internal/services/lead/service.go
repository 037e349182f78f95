package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
	"github.com/vasudevan-kross/calling-agent-app/internal/repository"
	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"go.uber.org/zap"
)

// Service manages lead operations
type Service struct {
	leads repository.LeadRepository
}

// NewService creates a new lead service
func NewService(leads repository.LeadRepository) *Service {
	return &Service{leads: leads}
}

// BulkError reports one failed row in a bulk import
type BulkError struct {
	Lead  *domain.Lead `json:"data"`
	Error string       `json:"error"`
}

// BulkResult summarizes a bulk import run
type BulkResult struct {
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Errors     []BulkError `json:"errors"`
}

// List retrieves leads with optional status filter and search across name,
// business name and phone
func (s *Service) List(ctx context.Context, skip, limit int, status, search string) ([]*domain.Lead, error) {
	return s.leads.List(ctx, repository.LeadQuery{Skip: skip, Limit: limit, Status: status, Search: search})
}

// Count returns the total number of leads, optionally filtered by status
func (s *Service) Count(ctx context.Context, status string) (int64, error) {
	return s.leads.Count(ctx, status)
}

// Get retrieves a single lead by ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, &domain.NotFoundError{Resource: "lead", ID: id}
	}
	return lead, nil
}

// Create creates a new lead. Fails with a ValidationError when a lead with
// the same phone number already exists.
func (s *Service) Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if err := validateLead(lead); err != nil {
		return nil, err
	}

	exists, err := s.leads.PhoneExists(ctx, lead.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("a lead with phone number %s already exists", lead.Phone)}
	}

	applyLeadDefaults(lead)
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Update applies a partial update to an existing lead
func (s *Service) Update(ctx context.Context, id string, updates map[string]interface{}) (*domain.Lead, error) {
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	lead, err := s.leads.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, &domain.NotFoundError{Resource: "lead", ID: id}
	}
	return lead, nil
}

// UpdateStatus updates only the lifecycle status of a lead
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Lead, error) {
	return s.Update(ctx, id, map[string]interface{}{"status": status})
}

// Delete removes a lead by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.leads.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return &domain.NotFoundError{Resource: "lead", ID: id}
	}
	return nil
}

// GetBySource retrieves all leads from a specific source
func (s *Service) GetBySource(ctx context.Context, source string) ([]*domain.Lead, error) {
	return s.leads.GetBySource(ctx, source)
}

// BulkCreate creates many leads at once, skipping any whose phone matches an
// existing lead. The existing phone set is fetched once up front; phones
// created during the run join the set so duplicates within the batch are also
// skipped.
func (s *Service) BulkCreate(ctx context.Context, leads []*domain.Lead) (*BulkResult, error) {
	existing, err := s.leads.ExistingPhones(ctx)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Errors: []BulkError{}}
	for _, lead := range leads {
		phone := strings.TrimSpace(lead.Phone)
		if phone != "" {
			if _, dup := existing[phone]; dup {
				result.Skipped++
				continue
			}
		}

		if err := validateLead(lead); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkError{Lead: lead, Error: err.Error()})
			continue
		}

		applyLeadDefaults(lead)
		if err := s.leads.Create(ctx, lead); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkError{Lead: lead, Error: err.Error()})
			continue
		}

		if phone != "" {
			existing[phone] = struct{}{}
		}
		result.Successful++
	}

	logger.Base().Info("bulk lead import finished",
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// validateLead checks the minimal required fields
func validateLead(lead *domain.Lead) error {
	if strings.TrimSpace(lead.Name) == "" {
		return &domain.ValidationError{Message: "lead name is required"}
	}
	if strings.TrimSpace(lead.Phone) == "" {
		return &domain.ValidationError{Message: "lead phone is required"}
	}
	return nil
}

// applyLeadDefaults fills defaults for fields callers may omit
func applyLeadDefaults(lead *domain.Lead) {
	if lead.Source == "" {
		lead.Source = string(domain.LeadSourceManual)
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusActive
	}
}
