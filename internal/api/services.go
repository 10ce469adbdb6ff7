package api

import (
	"context"
	"fmt"
)

// WorldService wraps /api/worlds.
type WorldService struct{ c *Client }

// NewWorldService wraps the shared client.
func NewWorldService(c *Client) *WorldService { return &WorldService{c: c} }

func (s *WorldService) List(ctx context.Context) ([]World, error) {
	var out []World
	return out, s.c.get(ctx, "/api/worlds", &out)
}

func (s *WorldService) Get(ctx context.Context, id string) (World, error) {
	var out World
	return out, s.c.get(ctx, fmt.Sprintf("/api/worlds/%s", id), &out)
}

func (s *WorldService) Create(ctx context.Context, req CreateWorldRequest) (World, error) {
	var out World
	return out, s.c.post(ctx, "/api/worlds", req, &out)
}

func (s *WorldService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, fmt.Sprintf("/api/worlds/%s", id))
}

// CharacterService wraps /api/characters.
type CharacterService struct{ c *Client }

// NewCharacterService wraps the shared client.
func NewCharacterService(c *Client) *CharacterService { return &CharacterService{c: c} }

func (s *CharacterService) ListByWorld(ctx context.Context, worldID string) ([]Character, error) {
	var out []Character
	return out, s.c.get(ctx, fmt.Sprintf("/api/worlds/%s/characters", worldID), &out)
}

func (s *CharacterService) Get(ctx context.Context, id string) (Character, error) {
	var out Character
	return out, s.c.get(ctx, fmt.Sprintf("/api/characters/%s", id), &out)
}

func (s *CharacterService) Create(ctx context.Context, worldID string, ch Character) (Character, error) {
	var out Character
	return out, s.c.post(ctx, fmt.Sprintf("/api/worlds/%s/characters", worldID), ch, &out)
}

func (s *CharacterService) Update(ctx context.Context, ch Character) error {
	return s.c.put(ctx, fmt.Sprintf("/api/characters/%s", ch.ID), ch, nil)
}

func (s *CharacterService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, fmt.Sprintf("/api/characters/%s", id))
}

// LocationService wraps /api/locations.
type LocationService struct{ c *Client }

// NewLocationService wraps the shared client.
func NewLocationService(c *Client) *LocationService { return &LocationService{c: c} }

func (s *LocationService) ListByWorld(ctx context.Context, worldID string) ([]Location, error) {
	var out []Location
	return out, s.c.get(ctx, fmt.Sprintf("/api/worlds/%s/locations", worldID), &out)
}

func (s *LocationService) Get(ctx context.Context, id string) (Location, error) {
	var out Location
	return out, s.c.get(ctx, fmt.Sprintf("/api/locations/%s", id), &out)
}

func (s *LocationService) Create(ctx context.Context, worldID string, loc Location) (Location, error) {
	var out Location
	return out, s.c.post(ctx, fmt.Sprintf("/api/worlds/%s/locations", worldID), loc, &out)
}

func (s *LocationService) Update(ctx context.Context, loc Location) error {
	return s.c.put(ctx, fmt.Sprintf("/api/locations/%s", loc.ID), loc, nil)
}

func (s *LocationService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, fmt.Sprintf("/api/locations/%s", id))
}

// SkillService wraps /api/skills.
type SkillService struct{ c *Client }

// NewSkillService wraps the shared client.
func NewSkillService(c *Client) *SkillService { return &SkillService{c: c} }

func (s *SkillService) ListByWorld(ctx context.Context, worldID string) ([]Skill, error) {
	var out []Skill
	return out, s.c.get(ctx, fmt.Sprintf("/api/worlds/%s/skills", worldID), &out)
}

func (s *SkillService) Create(ctx context.Context, worldID string, sk Skill) (Skill, error) {
	var out Skill
	return out, s.c.post(ctx, fmt.Sprintf("/api/worlds/%s/skills", worldID), sk, &out)
}

func (s *SkillService) Update(ctx context.Context, sk Skill) error {
	return s.c.put(ctx, fmt.Sprintf("/api/skills/%s", sk.ID), sk, nil)
}

func (s *SkillService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, fmt.Sprintf("/api/skills/%s", id))
}

// ChallengeService wraps /api/challenges.
type ChallengeService struct{ c *Client }

// NewChallengeService wraps the shared client.
func NewChallengeService(c *Client) *ChallengeService { return &ChallengeService{c: c} }

func (s *ChallengeService) ListByWorld(ctx context.Context, worldID string) ([]Challenge, error) {
	var out []Challenge
	return out, s.c.get(ctx, fmt.Sprintf("/api/worlds/%s/challenges", worldID), &out)
}

func (s *ChallengeService) Get(ctx context.Context, id string) (Challenge, error) {
	var out Challenge
	return out, s.c.get(ctx, fmt.Sprintf("/api/challenges/%s", id), &out)
}

func (s *ChallengeService) Create(ctx context.Context, worldID string, ch Challenge) (Challenge, error) {
	var out Challenge
	return out, s.c.post(ctx, fmt.Sprintf("/api/worlds/%s/challenges", worldID), ch, &out)
}

func (s *ChallengeService) Update(ctx context.Context, ch Challenge) error {
	return s.c.put(ctx, fmt.Sprintf("/api/challenges/%s", ch.ID), ch, nil)
}

func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, fmt.Sprintf("/api/challenges/%s", id))
}

// ToggleFavorite flips the favorite flag server-side.
func (s *ChallengeService) ToggleFavorite(ctx context.Context, id string) error {
	return s.c.post(ctx, fmt.Sprintf("/api/challenges/%s/favorite", id), nil, nil)
}

// ToggleActive flips the active flag server-side.
func (s *ChallengeService) ToggleActive(ctx context.Context, id string) error {
	return s.c.post(ctx, fmt.Sprintf("/api/challenges/%s/active", id), nil, nil)
}

// SettingsService wraps /api/worlds/{id}/settings.
type SettingsService struct{ c *Client }

// NewSettingsService wraps the shared client.
func NewSettingsService(c *Client) *SettingsService { return &SettingsService{c: c} }

func (s *SettingsService) Get(ctx context.Context, worldID string) (GameSettings, error) {
	var out GameSettings
	return out, s.c.get(ctx, fmt.Sprintf("/api/worlds/%s/settings", worldID), &out)
}

func (s *SettingsService) Update(ctx context.Context, settings GameSettings) error {
	return s.c.put(ctx, fmt.Sprintf("/api/worlds/%s/settings", settings.WorldID), settings, nil)
}
