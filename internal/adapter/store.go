package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

// RecordStore persists scan results between the scan and apply CLI
// invocations.
type RecordStore interface {
	SaveScan(path m.Path, records []m.TextRecord, resources []m.ResourceRecord) error
	LoadScan(path m.Path) ([]m.TextRecord, []m.ResourceRecord, error)
}

// YAMLRecordStore stores scan results as a YAML snapshot.
type YAMLRecordStore struct{}

// NewRecordStore constructs the default YAML-backed store.
func NewRecordStore() *YAMLRecordStore {
	return &YAMLRecordStore{}
}

type scanSnapshot struct {
	Version   int                  `yaml:"version"`
	Records   []textRecordYAML     `yaml:"records"`
	Resources []resourceRecordYAML `yaml:"resources,omitempty"`
}

type textRecordYAML struct {
	ID         string `yaml:"id"`
	Original   string `yaml:"original"`
	Translated string `yaml:"translated"`
	Skip       bool   `yaml:"skip,omitempty"`
	SkipReason string `yaml:"skip_reason,omitempty"`
}

type resourceRecordYAML struct {
	Name       string  `yaml:"name"`
	File       string  `yaml:"file"`
	PrimaryID  int64   `yaml:"primary_id"`
	Kind       string  `yaml:"kind"`
	RelatedIDs []int64 `yaml:"related_ids,omitempty"`
	Status     string  `yaml:"status"`
	FailReason string  `yaml:"fail_reason,omitempty"`
}

const snapshotVersion = 1

// SaveScan writes the snapshot. Record addresses are not stored
// separately: the ID is reconstructible, so loading re-derives them.
func (s *YAMLRecordStore) SaveScan(path m.Path, records []m.TextRecord, resources []m.ResourceRecord) error {
	snap := scanSnapshot{Version: snapshotVersion}
	for i := range records {
		rec := &records[i]
		snap.Records = append(snap.Records, textRecordYAML{
			ID:         rec.ID,
			Original:   rec.OriginalText,
			Translated: rec.TranslatedText,
			Skip:       rec.Skip,
			SkipReason: rec.SkipReason,
		})
	}
	for i := range resources {
		res := &resources[i]
		snap.Resources = append(snap.Resources, resourceRecordYAML{
			Name:       res.Name,
			File:       string(res.ContainerFile),
			PrimaryID:  res.PrimaryObjectID,
			Kind:       string(res.Kind),
			RelatedIDs: res.RelatedObjectIDs,
			Status:     string(res.Status),
			FailReason: res.FailReason,
		})
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshal scan snapshot: %w", err)
	}
	if err := os.WriteFile(string(path), data, 0o644); err != nil {
		return fmt.Errorf("write scan snapshot: %w", err)
	}
	return nil
}

// LoadScan reads a snapshot back, re-deriving record addresses from IDs.
func (s *YAMLRecordStore) LoadScan(path m.Path) ([]m.TextRecord, []m.ResourceRecord, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, nil, fmt.Errorf("read scan snapshot: %w", err)
	}

	var snap scanSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("parse scan snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	var records []m.TextRecord
	for _, ry := range snap.Records {
		rec, err := m.ParseRecordID(ry.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot record: %w", err)
		}
		rec.OriginalText = ry.Original
		rec.TranslatedText = ry.Translated
		rec.Skip = ry.Skip
		rec.SkipReason = ry.SkipReason
		records = append(records, *rec)
	}

	var resources []m.ResourceRecord
	for _, res := range snap.Resources {
		resources = append(resources, m.ResourceRecord{
			Name:             res.Name,
			ContainerFile:    m.Path(res.File),
			PrimaryObjectID:  res.PrimaryID,
			Kind:             m.CompositeKind(res.Kind),
			RelatedObjectIDs: res.RelatedIDs,
			Status:           m.ReplacementStatus(res.Status),
			FailReason:       res.FailReason,
		})
	}

	return records, resources, nil
}
