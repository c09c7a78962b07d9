package domain

import (
	"fmt"
	"regexp"
	"time"
)

var codePattern = regexp.MustCompile(`^[A-Z]{2,6}[0-9]{2,4}$`)

type Project struct {
	ID        string
	Code      string
	Name      string
	Status    ProjectStatus
	Budget    Budget
	Version   int64
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateCode checks that Code is non-empty and matches the required
// format: 2-6 uppercase letters followed by 2-4 digits (e.g. TWR01, KSH2024).
func (p *Project) ValidateCode() error {
	if p.Code == "" {
		return fmt.Errorf("project code is required (use --code flag)")
	}
	if !codePattern.MatchString(p.Code) {
		return fmt.Errorf("project code %q must be 2-6 uppercase letters followed by 2-4 digits (e.g. TWR01)", p.Code)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers Code; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.Code != "" {
		return p.Code
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

func (p *Project) IsDeleted() bool {
	return p.DeletedAt != nil
}
