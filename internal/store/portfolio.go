package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Keats0206/fundtrack/internal/model"
)

// Portfolio is the YAML document listing a fund's companies
type Portfolio struct {
	Fund      string          `yaml:"fund,omitempty"`
	Companies []model.Company `yaml:"companies"`
}

// LoadPortfolio reads a portfolio YAML file
func LoadPortfolio(path string) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}

	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse portfolio: %w", err)
	}

	for i, c := range p.Companies {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("portfolio company %d has no name", i)
		}
	}
	return &p, nil
}

// Seed creates every company in the portfolio that the store does not already have
func Seed(ctx context.Context, s CompanyStore, p *Portfolio) ([]model.Company, error) {
	out := make([]model.Company, 0, len(p.Companies))
	for _, c := range p.Companies {
		if c.ID != "" {
			existing, err := s.GetCompany(ctx, c.ID)
			if err == nil {
				out = append(out, existing)
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}

		created, err := s.CreateCompany(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", c.Name, err)
		}
		out = append(out, created)
	}
	return out, nil
}
