// Package vehicle owns the vehicle roster, persisted under the "vehicles"
// key. Vehicles are independent of characters and encounters.
package vehicle

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/reactive"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/collection"
)

// Config holds the dependencies for the vehicle store
type Config struct {
	Repository blob.Repository
	// IDGenerator defaults to UUIDs
	IDGenerator  idgen.Generator
	WriteTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	return vb.Build()
}

// Store is the vehicle roster
type Store struct {
	vehicles *collection.Collection[entities.Vehicle]
	idGen    idgen.Generator
}

// New creates the store and loads the persisted vehicles
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID("")
	}

	vehicles, err := collection.New[entities.Vehicle](&collection.Config{
		Repository:   cfg.Repository,
		Key:          blob.KeyVehicles,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		vehicles: vehicles,
		idGen:    gen,
	}, nil
}

// Subscribe registers cb for every change, starting with the current list
func (s *Store) Subscribe(cb func([]entities.Vehicle)) reactive.Unsubscribe {
	return s.vehicles.Subscribe(cb)
}

// Get returns a copy of the vehicles in insertion order
func (s *Store) Get() []entities.Vehicle {
	return s.vehicles.Items()
}

// Find returns the vehicle with id
func (s *Store) Find(id string) (entities.Vehicle, bool) {
	return s.vehicles.Find(id)
}

// Add appends a vehicle under a new id and returns that id
func (s *Store) Add(input entities.Vehicle) string {
	input.ID = s.idGen.Generate()
	s.vehicles.Append(input)

	slog.Debug("vehicle added",
		"vehicle_id", input.ID,
		"name", input.Name)

	return input.ID
}

// Update merges patch into the vehicle with id. A missing id is ignored.
func (s *Store) Update(id string, patch entities.VehiclePatch) {
	_, _ = s.vehicles.Replace(id, func(v entities.Vehicle) (entities.Vehicle, error) {
		return patch.Apply(v), nil
	})
}

// Remove deletes the vehicle with id, if present
func (s *Store) Remove(id string) {
	if s.vehicles.Remove(id) {
		slog.Debug("vehicle removed", "vehicle_id", id)
	}
}

// Load replaces the in-memory vehicles with what storage holds now. Use it
// when another writer may have changed the "vehicles" key. An absent or
// unparseable blob leaves the current vehicles in place.
func (s *Store) Load() {
	s.vehicles.Load()
}

// Close stops persisting changes
func (s *Store) Close() {
	s.vehicles.Close()
}
