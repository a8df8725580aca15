package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectEntry is one canonical project in the seed catalogue. City and
// District are English names resolved against the reference tables at seed
// time; unresolvable locations leave the project without a district.
type ProjectEntry struct {
	Name        string `yaml:"name"`
	City        string `yaml:"city,omitempty"`
	District    string `yaml:"district,omitempty"`
	ProjectType string `yaml:"project_type,omitempty"`
}

// ProjectCatalog is the canonical project list the matcher resolves
// extracted names against.
type ProjectCatalog struct {
	Projects []ProjectEntry `yaml:"projects"`
}

// LoadProjectCatalog loads the project catalogue from a YAML file, falling
// back to the built-in catalogue when path is empty or the file is missing.
func LoadProjectCatalog(path string) (*ProjectCatalog, error) {
	if path == "" {
		return DefaultProjectCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProjectCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read project catalogue: %w", err)
	}

	var catalog ProjectCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse project catalogue %s: %w", path, err)
	}
	if len(catalog.Projects) == 0 {
		return DefaultProjectCatalog(), nil
	}
	return &catalog, nil
}

// DefaultProjectCatalog returns the built-in catalogue of projects the
// analyzed reports keep referring to.
func DefaultProjectCatalog() *ProjectCatalog {
	return &ProjectCatalog{Projects: []ProjectEntry{
		{Name: "Masteri Thao Dien", City: "Ho Chi Minh City", District: "Thu Duc", ProjectType: "apartment"},
		{Name: "Masteri Centre Point", City: "Ho Chi Minh City", District: "District 9", ProjectType: "apartment"},
		{Name: "Vista Verde", City: "Ho Chi Minh City", District: "District 2", ProjectType: "apartment"},
		{Name: "The Global City", City: "Ho Chi Minh City", District: "Thu Duc", ProjectType: "mixed_use"},
		{Name: "Eaton Park", City: "Ho Chi Minh City", District: "Thu Duc", ProjectType: "apartment"},
		{Name: "Picity Sky Park", City: "Ho Chi Minh City", District: "District 12", ProjectType: "apartment"},
		{Name: "The Emerald 68", City: "Binh Duong", District: "Thuan An", ProjectType: "apartment"},
		{Name: "Happy One Morri", City: "Binh Duong", District: "Thu Dau Mot", ProjectType: "apartment"},
		{Name: "Lancaster Luminaire", City: "Hanoi", District: "Dong Da", ProjectType: "apartment"},
		{Name: "Vinhomes West Point", City: "Hanoi", District: "Nam Tu Liem", ProjectType: "apartment"},
		{Name: "Vinhomes Smart City", City: "Hanoi", District: "Nam Tu Liem", ProjectType: "mixed_use"},
		{Name: "Vinhomes Ocean Park", City: "Hanoi", District: "Gia Lam", ProjectType: "mixed_use"},
		{Name: "Noble Crystal Tay Ho", City: "Hanoi", District: "Tay Ho", ProjectType: "apartment"},
		{Name: "Starlake The Prime K8", City: "Hanoi", District: "Tay Ho", ProjectType: "apartment"},
		{Name: "The Cosmopolitan Co Loa", City: "Hanoi", District: "Dong Anh", ProjectType: "apartment"},
		{Name: "The Matrix One", City: "Hanoi", District: "Nam Tu Liem", ProjectType: "apartment"},
	}}
}
