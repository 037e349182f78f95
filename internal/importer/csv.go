package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
)

// ErrNoContacts is returned when a file parsed cleanly but contained no rows
// with a usable phone number
var ErrNoContacts = errors.New("no valid contact data found in file")

var phonePattern = regexp.MustCompile(`\+?1?\d{9,15}`)

// columnSynonyms maps lead fields to the header names files use for them
var columnSynonyms = map[string][]string{
	"name":          {"name", "contact_name", "full_name", "person", "contact"},
	"business_name": {"business", "company", "business_name", "organization", "org"},
	"phone":         {"phone", "telephone", "mobile", "contact_number", "tel", "cell"},
	"email":         {"email", "email_address", "e-mail", "mail"},
	"address":       {"address", "street", "location", "addr"},
	"city":          {"city", "town"},
	"state":         {"state", "province", "region"},
	"country":       {"country"},
}

// ParseFile extracts lead rows from an uploaded file. Only delimited text
// formats are supported; anything else is rejected with a ValidationError.
func ParseFile(filename string, r io.Reader) ([]*domain.Lead, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".txt":
		return ParseCSV(r)
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unsupported file type %q, allowed: .csv, .txt", ext),
		}
	}
}

// ParseCSV extracts lead rows from CSV content. The header row is matched
// against known column synonyms; when no phone column is present, cells are
// scanned for phone-shaped values so unlabeled exports still import.
func ParseCSV(r io.Reader) ([]*domain.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("failed to parse CSV: %v", err)}
	}
	if len(records) < 2 {
		return nil, ErrNoContacts
	}

	columns := mapColumns(records[0])

	var leads []*domain.Lead
	for _, row := range records[1:] {
		lead := rowToLead(row, columns)
		if lead == nil {
			continue
		}
		leads = append(leads, lead)
	}

	if len(leads) == 0 {
		return nil, ErrNoContacts
	}
	return leads, nil
}

// mapColumns resolves header names to lead field -> column index
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for idx, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		for field, synonyms := range columnSynonyms {
			if _, taken := columns[field]; taken {
				continue
			}
			for _, synonym := range synonyms {
				if name == synonym {
					columns[field] = idx
					break
				}
			}
		}
	}
	return columns
}

// rowToLead builds a lead from one CSV row, or nil when the row has no phone
func rowToLead(row []string, columns map[string]int) *domain.Lead {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	phone := cell("phone")
	if phone == "" {
		// No labeled phone column: look for a phone-shaped value anywhere
		for _, value := range row {
			if match := phonePattern.FindString(value); match != "" {
				phone = match
				break
			}
		}
	}
	if phone == "" {
		return nil
	}

	name := cell("name")
	if name == "" {
		name = cell("business_name")
	}
	if name == "" {
		name = "Unknown"
	}

	return &domain.Lead{
		Name:         name,
		BusinessName: cell("business_name"),
		Phone:        phone,
		Email:        cell("email"),
		Address:      cell("address"),
		City:         cell("city"),
		State:        cell("state"),
		Country:      cell("country"),
		Source:       string(domain.LeadSourceImport),
		Status:       domain.LeadStatusActive,
	}
}
