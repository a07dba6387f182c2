package randomuser

import (
	"strings"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
)

// response mirrors the subset of the API payload we read.
type response struct {
	Results []result `json:"results"`
	Info    info     `json:"info"`
	Error   string   `json:"error,omitempty"`
}

type info struct {
	Seed    string `json:"seed"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
}

type result struct {
	Name    name    `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Login   login   `json:"login"`
	Picture picture `json:"picture"`
}

type name struct {
	Title string `json:"title"`
	First string `json:"first"`
	Last  string `json:"last"`
}

type login struct {
	UUID string `json:"uuid"`
}

type picture struct {
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Thumbnail string `json:"thumbnail"`
}

// users maps results to domain users, dropping entries without a login uuid.
func (r response) users() []domain.User {
	users := make([]domain.User, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Login.UUID == "" {
			continue
		}
		users = append(users, domain.User{
			ID:      res.Login.UUID,
			Name:    strings.TrimSpace(res.Name.First + " " + res.Name.Last),
			Email:   res.Email,
			Phone:   res.Phone,
			Picture: res.Picture.Thumbnail,
		})
	}
	return users
}
