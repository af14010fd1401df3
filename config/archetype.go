package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Archetype is a reusable analysis profile for a class of repositories,
// loaded from YAML. It declares the analyses to run plus optional ingestion
// filters that merge into the main config.
type Archetype struct {
	Name            string           `yaml:"name"`
	Description     string           `yaml:"description"`
	IncludePatterns []string         `yaml:"include_patterns"`
	ExcludePatterns []string         `yaml:"exclude_patterns"`
	Analyses        []AnalysisConfig `yaml:"analyses"`
}

func LoadArchetype(path string) (*Archetype, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read archetype file: %v", err)
	}
	var arch Archetype
	if err := yaml.Unmarshal(data, &arch); err != nil {
		return nil, fmt.Errorf("invalid archetype file format: %v", err)
	}
	return &arch, nil
}

// ApplyArchetype appends the archetype's analyses and filters to cfg.
// Explicit config entries stay first so they win on duplicate fact names
// during validation.
func (cfg *Config) ApplyArchetype(arch *Archetype) {
	if arch == nil {
		return
	}
	cfg.IncludePatterns = append(cfg.IncludePatterns, arch.IncludePatterns...)
	cfg.ExcludePatterns = append(cfg.ExcludePatterns, arch.ExcludePatterns...)
	cfg.Analyses = append(cfg.Analyses, arch.Analyses...)
}

// PatternList accepts either a single pattern string or a list of patterns,
// in both JSON and YAML.
type PatternList []string

func (p *PatternList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PatternList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*p = PatternList(many)
	return nil
}

func (p *PatternList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*p = PatternList{single}
		return nil
	default:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*p = PatternList(many)
		return nil
	}
}
