package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// EntityTypeVehicle is the core.Entity type reported by vehicles
const EntityTypeVehicle = "vehicle"

// Vehicle is an independently tracked vehicle. It has no relationship to
// characters or encounters.
type Vehicle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AC       int    `json:"ac"`
	MaxHP    int    `json:"maxHp"`
	Speed    int    `json:"speed"`
	Notes    string `json:"notes"`
	IsPlayer bool   `json:"isPlayer"`
}

// GetID implements core.Entity
func (v Vehicle) GetID() string {
	return v.ID
}

// GetType implements core.Entity
func (v Vehicle) GetType() string {
	return EntityTypeVehicle
}

// Clone returns v; vehicles hold no reference types
func (v Vehicle) Clone() Vehicle {
	return v
}

// VehiclePatch is a partial update. Nil fields are left alone.
type VehiclePatch struct {
	Name     *string
	AC       *int
	MaxHP    *int
	Speed    *int
	Notes    *string
	IsPlayer *bool
}

// Apply merges the patch into v and returns the result
func (p VehiclePatch) Apply(v Vehicle) Vehicle {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.AC != nil {
		v.AC = *p.AC
	}
	if p.MaxHP != nil {
		v.MaxHP = *p.MaxHP
	}
	if p.Speed != nil {
		v.Speed = *p.Speed
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
	if p.IsPlayer != nil {
		v.IsPlayer = *p.IsPlayer
	}
	return v
}

var _ core.Entity = Vehicle{}
