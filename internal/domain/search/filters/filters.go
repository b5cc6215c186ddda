// Package filters holds the request filter model. The same Set drives both
// the SQL WHERE clauses built by the repository and the in-memory Matches
// predicate used when ranking materialized rows, so both paths select the
// same companies.
package filters

import (
	"strings"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// Set is the filter state of one request. Dimensions combine with AND,
// values inside a dimension with OR. An empty dimension applies no
// constraint. Boolean flags constrain only when true.
type Set struct {
	Tags       []string `json:"tags,omitempty"`
	Industries []string `json:"industries,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	Stages     []string `json:"stages,omitempty"`
	Batches    []string `json:"batches,omitempty"`
	Years      []int    `json:"years,omitempty"`
	IsHiring   bool     `json:"is_hiring,omitempty"`
	Nonprofit  bool     `json:"nonprofit,omitempty"`
	TopCompany bool     `json:"top_company,omitempty"`
}

// IsZero reports whether the set applies no constraint at all.
func (s Set) IsZero() bool {
	return len(s.Tags) == 0 && len(s.Industries) == 0 && len(s.Regions) == 0 &&
		len(s.Stages) == 0 && len(s.Batches) == 0 && len(s.Years) == 0 &&
		!s.IsHiring && !s.Nonprofit && !s.TopCompany
}

// Normalize returns a copy with values trimmed and empty strings dropped.
func (s Set) Normalize() Set {
	out := s
	out.Tags = cleanValues(s.Tags)
	out.Industries = cleanValues(s.Industries)
	out.Regions = cleanValues(s.Regions)
	out.Stages = cleanValues(s.Stages)
	out.Batches = cleanValues(s.Batches)
	return out
}

// Matches reports whether the company satisfies every constrained dimension.
// The industries dimension accepts a match on either the primary industry or
// the industries list. The years dimension reads the UTC calendar year of the
// launch date; companies without a launch date never match a year constraint.
func (s Set) Matches(c *company.Company) bool {
	if !anyIn(s.Tags, c.Tags) {
		return false
	}
	if len(s.Industries) > 0 && !s.matchesIndustry(c) {
		return false
	}
	if !anyIn(s.Regions, c.Regions) {
		return false
	}
	if !oneOf(c.Stage, s.Stages) {
		return false
	}
	if !oneOf(c.Batch, s.Batches) {
		return false
	}
	if len(s.Years) > 0 {
		year, ok := c.LaunchYear()
		if !ok || !containsInt(s.Years, year) {
			return false
		}
	}
	if s.IsHiring && !c.IsHiring {
		return false
	}
	if s.Nonprofit && !c.Nonprofit {
		return false
	}
	if s.TopCompany && !c.TopCompany {
		return false
	}
	return true
}

func (s Set) matchesIndustry(c *company.Company) bool {
	for _, want := range s.Industries {
		if c.Industry == want {
			return true
		}
		for _, have := range c.Industries {
			if have == want {
				return true
			}
		}
	}
	return false
}

// anyIn reports whether any wanted value appears in the company's list.
// An empty want list applies no constraint.
func anyIn(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// oneOf reports whether the single-valued field equals any wanted value.
// An empty want list applies no constraint.
func oneOf(value string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if value == w {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func cleanValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
