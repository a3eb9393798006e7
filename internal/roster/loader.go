// Package roster reads the organization roster and the survey card definition from disk.
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anpi-survey/backend/internal/models"
)

// Source supplies organizations and the survey definition.
type Source interface {
	LoadOrganizations() ([]models.Organization, error)
	LoadSurveyDefinition() (models.SurveyDefinition, error)
}

// FileSource reads both documents from YAML or JSON files on every call, so edits are
// picked up without a restart.
type FileSource struct {
	OrganizationsPath string
	DefinitionPath    string
}

// NewFileSource creates a file-backed source.
func NewFileSource(orgPath, defPath string) *FileSource {
	return &FileSource{OrganizationsPath: orgPath, DefinitionPath: defPath}
}

// LoadOrganizations reads and validates the roster.
func (s *FileSource) LoadOrganizations() ([]models.Organization, error) {
	var orgs []models.Organization
	if err := readFile(s.OrganizationsPath, &orgs); err != nil {
		return nil, err
	}
	for i, o := range orgs {
		if strings.TrimSpace(o.Name) == "" {
			return nil, fmt.Errorf("organization %d: name required", i)
		}
	}
	return orgs, nil
}

// LoadSurveyDefinition reads and validates the card definition.
func (s *FileSource) LoadSurveyDefinition() (models.SurveyDefinition, error) {
	var def models.SurveyDefinition
	if err := readFile(s.DefinitionPath, &def); err != nil {
		return def, err
	}
	if def.Title == "" {
		return def, fmt.Errorf("survey definition: title required")
	}
	for i, q := range def.Questions {
		if len(q.Choices) == 0 {
			return def, fmt.Errorf("survey question %d: at least one choice required", i+1)
		}
	}
	return def, nil
}

// Static is a fixed in-memory source.
type Static struct {
	Organizations []models.Organization
	Definition    models.SurveyDefinition
}

// LoadOrganizations returns the fixed roster.
func (s Static) LoadOrganizations() ([]models.Organization, error) { return s.Organizations, nil }

// LoadSurveyDefinition returns the fixed definition.
func (s Static) LoadSurveyDefinition() (models.SurveyDefinition, error) { return s.Definition, nil }

// readFile decodes a YAML document; JSON files parse as YAML too.
func readFile(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
