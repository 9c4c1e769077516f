// Package doctor inspects the stored blobs for data the stores would
// silently discard, and repairs it on request.
package doctor

//go:generate mockgen -destination=mock/mock_service.go -package=doctormock github.com/KirkDiggler/initiative-tracker/internal/services/doctor Service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
)

// Status describes the health of one key
type Status string

// Key statuses
const (
	StatusOK           Status = "ok"
	StatusMissing      Status = "missing"
	StatusMalformed    Status = "malformed"
	StatusDuplicateIDs Status = "duplicate_ids"
)

// Service defines the storage health checks
type Service interface {
	Check(ctx context.Context, input *CheckInput) (*CheckOutput, error)
	Repair(ctx context.Context, input *RepairInput) (*RepairOutput, error)
}

// CheckInput selects keys to inspect. Empty means every known key.
type CheckInput struct {
	Keys []string
}

// KeyReport is the result for a single key
type KeyReport struct {
	Key    string
	Status Status
	Bytes  int
	// Count is the number of records for roster keys
	Count int
	// Detail explains a non-ok status
	Detail string
}

// CheckOutput lists one report per inspected key, in input order
type CheckOutput struct {
	Reports []KeyReport
}

// Healthy reports whether every key is ok or simply absent
func (o *CheckOutput) Healthy() bool {
	for _, r := range o.Reports {
		if r.Status != StatusOK && r.Status != StatusMissing {
			return false
		}
	}
	return true
}

// RepairInput selects keys to repair. Empty means every known key.
type RepairInput struct {
	Keys []string
}

// RepairOutput lists what was rewritten
type RepairOutput struct {
	Repaired []KeyReport
}

// Config holds the dependencies for the doctor service
type Config struct {
	Repository blob.Repository
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

type service struct {
	repo blob.Repository
}

// NewService creates a doctor service
func NewService(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &service{repo: cfg.Repository}, nil
}

// KnownKeys returns every key the tracker persists
func KnownKeys() []string {
	return []string{blob.KeyCharacters, blob.KeyVehicles, blob.KeySettings}
}

func selectKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return KnownKeys(), nil
	}

	for _, key := range keys {
		if !isKnownKey(key) {
			return nil, errors.InvalidArgumentf("unknown key %q", key).
				WithMeta("known_keys", KnownKeys())
		}
	}
	return keys, nil
}

func isKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Check reads each key and reports whether it parses
func (s *service) Check(ctx context.Context, input *CheckInput) (*CheckOutput, error) {
	if input == nil {
		input = &CheckInput{}
	}

	keys, err := selectKeys(input.Keys)
	if err != nil {
		return nil, err
	}

	output := &CheckOutput{Reports: make([]KeyReport, 0, len(keys))}
	for _, key := range keys {
		report, _, err := s.inspect(ctx, key)
		if err != nil {
			return nil, err
		}
		output.Reports = append(output.Reports, report)
	}

	return output, nil
}

// Repair rewrites every malformed key with its empty default and drops all
// but the first record for each duplicated id. Healthy and missing keys are
// not touched.
func (s *service) Repair(ctx context.Context, input *RepairInput) (*RepairOutput, error) {
	if input == nil {
		input = &RepairInput{}
	}

	keys, err := selectKeys(input.Keys)
	if err != nil {
		return nil, err
	}

	output := &RepairOutput{}
	for _, key := range keys {
		report, fixed, err := s.inspect(ctx, key)
		if err != nil {
			return nil, err
		}
		if fixed == nil {
			continue
		}

		if _, err := s.repo.Set(ctx, blob.SetInput{Key: key, Value: fixed}); err != nil {
			return nil, errors.Wrapf(err, "failed to repair %s", key)
		}

		slog.InfoContext(ctx, "Repaired stored data",
			"key", key,
			"status", string(report.Status),
			"detail", report.Detail)

		output.Repaired = append(output.Repaired, report)
	}

	return output, nil
}

// inspect returns the key's report and, when it needs repair, the bytes
// that should replace it
func (s *service) inspect(ctx context.Context, key string) (KeyReport, []byte, error) {
	report := KeyReport{Key: key}

	output, err := s.repo.Get(ctx, blob.GetInput{Key: key})
	if err != nil {
		if errors.IsNotFound(err) {
			report.Status = StatusMissing
			return report, nil, nil
		}
		return report, nil, errors.Wrapf(err, "failed to read %s", key)
	}
	report.Bytes = len(output.Value)

	switch key {
	case blob.KeyCharacters:
		return inspectRoster[entities.Character](report, output.Value)
	case blob.KeyVehicles:
		return inspectRoster[entities.Vehicle](report, output.Value)
	default:
		return inspectSettings(report, output.Value)
	}
}

type identified interface {
	GetID() string
}

func inspectRoster[T identified](report KeyReport, raw []byte) (KeyReport, []byte, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		report.Status = StatusMalformed
		report.Detail = err.Error()
		return report, []byte("[]"), nil
	}
	report.Count = len(items)

	seen := make(map[string]struct{}, len(items))
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.GetID()]; dup {
			continue
		}
		seen[item.GetID()] = struct{}{}
		kept = append(kept, item)
	}

	if len(kept) == len(items) {
		report.Status = StatusOK
		return report, nil, nil
	}

	report.Status = StatusDuplicateIDs
	report.Detail = fmt.Sprintf("%d records repeat an earlier id", len(items)-len(kept))

	fixed, err := json.Marshal(kept)
	if err != nil {
		return report, nil, errors.Wrapf(err, "failed to marshal %s", report.Key)
	}
	return report, fixed, nil
}

func inspectSettings(report KeyReport, raw []byte) (KeyReport, []byte, error) {
	var settings entities.Settings
	err := json.Unmarshal(raw, &settings)
	if err == nil {
		report.Status = StatusOK
		return report, nil, nil
	}
	report.Status = StatusMalformed
	report.Detail = err.Error()

	fixed, err := json.Marshal(entities.DefaultSettings())
	if err != nil {
		return report, nil, errors.Wrap(err, "failed to marshal default settings")
	}
	return report, fixed, nil
}
