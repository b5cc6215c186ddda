// Package company defines the YC directory records shared between layers.
package company

import (
	"strings"
	"time"
)

// Company is one YC directory entry as stored locally.
type Company struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Website         string     `json:"website,omitempty"`
	OneLiner        string     `json:"one_liner,omitempty"`
	LongDescription string     `json:"long_description,omitempty"`
	Batch           string     `json:"batch,omitempty"`
	Status          string     `json:"status,omitempty"`
	Stage           string     `json:"stage,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	Industries      []string   `json:"industries,omitempty"`
	Regions         []string   `json:"regions,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	LaunchedAt      *time.Time `json:"launched_at,omitempty"`
	TeamSize        *int64     `json:"team_size,omitempty"`
	IsHiring        bool       `json:"is_hiring"`
	Nonprofit       bool       `json:"nonprofit"`
	TopCompany      bool       `json:"top_company"`
	SearchText      string     `json:"-"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// LaunchYear returns the UTC calendar year of the launch date.
// ok is false when the launch date is unknown.
func (c *Company) LaunchYear() (year int, ok bool) {
	if c.LaunchedAt == nil {
		return 0, false
	}
	return c.LaunchedAt.UTC().Year(), true
}

// PrimaryTag returns the first stored tag, or "" when the company has none.
func (c *Company) PrimaryTag() string {
	if len(c.Tags) == 0 {
		return ""
	}
	return c.Tags[0]
}

// PrimaryIndustry returns the first entry of the industries list, falling back
// to the single industry field.
func (c *Company) PrimaryIndustry() string {
	if len(c.Industries) > 0 {
		return c.Industries[0]
	}
	return c.Industry
}

// BuildSearchText flattens the searchable fields into one lowercase blob.
// Stored alongside the record so keyword queries hit a single column.
func (c *Company) BuildSearchText() string {
	parts := make([]string, 0, 8+len(c.Tags)+len(c.Industries)+len(c.Regions))
	parts = append(parts, c.Name, c.Slug, c.OneLiner, c.LongDescription, c.Batch, c.Stage, c.Industry)
	parts = append(parts, c.Tags...)
	parts = append(parts, c.Industries...)
	parts = append(parts, c.Regions...)

	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			joined = append(joined, p)
		}
	}
	return strings.ToLower(strings.Join(joined, " "))
}

// EmbeddingText composes the text fed to the embedding provider: name,
// one-liner and long description, separated by blank lines.
func (c *Company) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Name, c.OneLiner, c.LongDescription} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
