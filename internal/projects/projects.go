// Package projects loads the portfolio entries shown on the projects page.
package projects

import (
	"errors"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/adyingdeath/blog/internal/models"
)

type file struct {
	Projects []models.Project `yaml:"projects"`
}

// Load reads the projects file at path. A missing file or an empty path
// yields no projects.
func Load(path string) ([]models.Project, error) {
	if path == "" {
		return []models.Project{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("projects: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a projects document.
func Parse(data []byte) ([]models.Project, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("projects: parse: %w", err)
	}
	for i := range f.Projects {
		if err := validate(&f.Projects[i]); err != nil {
			return nil, fmt.Errorf("projects: entry %d: %w", i, err)
		}
	}
	if f.Projects == nil {
		f.Projects = []models.Project{}
	}
	return f.Projects, nil
}

func validate(p *models.Project) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.Href, is.URL),
	)
}
