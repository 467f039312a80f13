// Package seed loads users and items from a YAML file into the store.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type File struct {
	Users []User `yaml:"users"`
	Items []Item `yaml:"items"`
}

type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Item is owned by the user whose email is Owner.
type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   *bool  `yaml:"available"`
	Owner       string `yaml:"owner"`
}

// Result counts the records created; existing ones are skipped.
type Result struct {
	Users int `json:"users"`
	Items int `json:"items"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply creates missing users by email, then missing items by owner and name.
func Apply(ctx context.Context, f *File, users domain.UserService, items domain.ItemService, logger *zerolog.Logger) (Result, error) {
	var res Result
	if f == nil {
		return res, nil
	}

	all, err := users.GetAll(ctx)
	if err != nil {
		return res, err
	}
	byEmail := make(map[string]int64, len(all))
	for _, u := range all {
		byEmail[strings.ToLower(u.Email)] = u.ID
	}

	for _, u := range f.Users {
		if _, ok := byEmail[strings.ToLower(u.Email)]; ok {
			continue
		}
		created, err := users.Create(ctx, &models.User{Name: u.Name, Email: u.Email})
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		byEmail[strings.ToLower(created.Email)] = created.ID
		res.Users++
	}

	owned := make(map[int64]map[string]bool)
	for _, it := range f.Items {
		ownerID, ok := byEmail[strings.ToLower(it.Owner)]
		if !ok {
			return res, domain.NotFoundf("seed item %q: owner %s not found", it.Name, it.Owner)
		}
		names, err := ownedNames(ctx, items, owned, ownerID)
		if err != nil {
			return res, err
		}
		if names[it.Name] {
			continue
		}

		available := true
		if it.Available != nil {
			available = *it.Available
		}
		if _, err := items.Create(ctx, ownerID, &models.Item{
			Name:        it.Name,
			Description: it.Description,
			Available:   available,
		}); err != nil {
			return res, fmt.Errorf("seed item %q: %w", it.Name, err)
		}
		names[it.Name] = true
		res.Items++
	}

	if logger != nil {
		logger.Info().Int("users", res.Users).Int("items", res.Items).Msg("seed applied")
	}
	return res, nil
}

func ownedNames(ctx context.Context, items domain.ItemService, cache map[int64]map[string]bool, ownerID int64) (map[string]bool, error) {
	if names, ok := cache[ownerID]; ok {
		return names, nil
	}
	views, err := items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(views))
	for _, v := range views {
		names[v.Name] = true
	}
	cache[ownerID] = names
	return names, nil
}
