package api

// World is a game world container.
type World struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RuleSystem  string `json:"rule_system,omitempty"`
}

// CreateWorldRequest creates a new world.
type CreateWorldRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RuleSystem  string `json:"rule_system,omitempty"`
}

// Character is a player or non-player character record.
type Character struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SpriteAsset   string `json:"sprite_asset,omitempty"`
	PortraitAsset string `json:"portrait_asset,omitempty"`
	Description   string `json:"description,omitempty"`
	IsPlayer      bool   `json:"is_player"`
}

// Location is a navigable place in a world.
type Location struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	BackdropAsset string   `json:"backdrop_asset,omitempty"`
	ConnectedTo   []string `json:"connected_to"`
}

// Skill is a rollable character capability.
type Skill struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	BaseAttribute string `json:"base_attribute,omitempty"`
	IsHidden      bool   `json:"is_hidden"`
}

// Challenge is a DM-authored skill test.
type Challenge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SkillID     string `json:"skill_id"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description,omitempty"`
	IsFavorite  bool   `json:"is_favorite"`
	IsActive    bool   `json:"is_active"`
}

// GameSettings are per-world Engine settings.
type GameSettings struct {
	WorldID          string `json:"world_id"`
	ApprovalRequired bool   `json:"approval_required"`
	Tone             string `json:"tone,omitempty"`
}
