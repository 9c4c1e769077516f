package entities

// Settings are UI preferences persisted alongside the rosters
type Settings struct {
	ShowDebugInfo bool `json:"showDebugInfo"`
}

// DefaultSettings is used when nothing valid is stored
func DefaultSettings() Settings {
	return Settings{ShowDebugInfo: true}
}
