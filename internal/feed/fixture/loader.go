// Package fixture serves user pages from a YAML file. Used for offline
// development and demos in place of the remote feed.
package fixture

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

// File is the on-disk layout:
//
//	pages:
//	  - - id: u1
//	      name: Jane Roe
//	      email: jane@example.com
//	  - - id: u3
//	      name: ...
type File struct {
	Pages [][]Entry `yaml:"pages"`
}

// Entry is one user in a fixture page
type Entry struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email,omitempty"`
	Phone   string `yaml:"phone,omitempty"`
	Picture string `yaml:"picture,omitempty"`
}

// Source implements the feed contract over a parsed fixture file.
type Source struct {
	pages [][]domain.User
}

// Load reads and parses the fixture file
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Source from raw YAML
func Parse(data []byte) (*Source, error) {
	data = expandEnv(data)

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
	}

	pages := make([][]domain.User, 0, len(f.Pages))
	for i, p := range f.Pages {
		users := make([]domain.User, 0, len(p))
		for j, e := range p {
			if e.ID == "" {
				return nil, fmt.Errorf("fixture page %d entry %d: missing id", i+1, j)
			}
			users = append(users, domain.User{
				ID:      e.ID,
				Name:    e.Name,
				Email:   e.Email,
				Phone:   e.Phone,
				Picture: e.Picture,
			})
		}
		pages = append(pages, users)
	}
	return &Source{pages: pages}, nil
}

// FetchPage returns page (1-based). Pages past the end are empty.
func (s *Source) FetchPage(ctx context.Context, page int) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.AsNetworkError("fetch users", page, err)
	}
	if page < 1 {
		return nil, &domain.NetworkError{Op: "fetch users", Page: page, Err: fmt.Errorf("invalid page number %d", page)}
	}
	if page > len(s.pages) {
		return []domain.User{}, nil
	}
	out := make([]domain.User, len(s.pages[page-1]))
	copy(out, s.pages[page-1])
	return out, nil
}

// Pages reports how many non-synthetic pages the fixture holds.
func (s *Source) Pages() int { return len(s.pages) }

var envRef = regexp.MustCompile(`\{\{\s*([A-Z0-9_]+)\s*\}\}`)

// expandEnv replaces {{VAR}} references with the environment value (or "").
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
