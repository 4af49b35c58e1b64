package content

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/joshuaberetta/cvglobe/internal/scene"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// regionsDocument lists countries per region:
//
//	regions:
//	  Middle East: [Iraq, Jordan]
//	  Africa: [Kenya]
type regionsDocument struct {
	Regions map[string][]string `yaml:"regions"`
}

// DecodeRegions decodes a region document into a country to region table.
// A country listed under two regions keeps the later one in sorted region order.
func DecodeRegions(r io.Reader) (scene.RegionTable, error) {
	var doc regionsDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding regions: %w", err)
	}

	table := make(scene.RegionTable)
	for _, region := range slices.Sorted(maps.Keys(doc.Regions)) {
		for _, country := range doc.Regions[region] {
			table[country] = region
		}
	}
	return table, nil
}

// LoadRegionsFile reads the region table from a YAML file.
func LoadRegionsFile(path string) (scene.RegionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open regions: %w", err)
	}
	defer f.Close()
	return DecodeRegions(f)
}

type workEntry struct {
	Position  string `yaml:"position"`
	Company   string `yaml:"company"`
	StartDate string `yaml:"startDate"`
	EndDate   string `yaml:"endDate"`
}

type volunteerEntry struct {
	Position     string `yaml:"position"`
	Organization string `yaml:"organization"`
	StartDate    string `yaml:"startDate"`
	EndDate      string `yaml:"endDate"`
}

type historyDocument struct {
	Work         []workEntry      `yaml:"work"`
	Volunteering []volunteerEntry `yaml:"volunteering"`
}

// DecodeWorkHistory decodes the work and volunteering lists of a CV
// document into timeline intervals, work first.
func DecodeWorkHistory(r io.Reader) ([]core.WorkInterval, error) {
	var doc historyDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding work history: %w", err)
	}

	out := make([]core.WorkInterval, 0, len(doc.Work)+len(doc.Volunteering))
	for _, w := range doc.Work {
		out = append(out, core.WorkInterval{
			Kind:         core.IntervalWork,
			Position:     w.Position,
			Organization: w.Company,
			StartDate:    w.StartDate,
			EndDate:      w.EndDate,
		})
	}
	for _, v := range doc.Volunteering {
		out = append(out, core.WorkInterval{
			Kind:         core.IntervalVolunteer,
			Position:     v.Position,
			Organization: v.Organization,
			StartDate:    v.StartDate,
			EndDate:      v.EndDate,
		})
	}
	return out, nil
}

// LoadWorkHistoryFile reads work history from a YAML file.
func LoadWorkHistoryFile(path string) ([]core.WorkInterval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open work history: %w", err)
	}
	defer f.Close()
	return DecodeWorkHistory(f)
}
