package internal

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/phuslu/log"
)

var ScenarioFileName = ".handoff.toml"

// ProducerSpec describes one producer goroutine in a scenario.
type ProducerSpec struct {
	ID      string `toml:"id"`
	Items   int    `toml:"items"`
	DelayMS int    `toml:"delay_ms,omitempty"`
	// FailAfter > 0 makes the producer return an error after pushing that
	// many items, for exercising error aggregation.
	FailAfter int `toml:"fail_after,omitempty"`
}

// ScenarioFile is the TOML description of a producer/consumer run.
type ScenarioFile struct {
	Name            string         `toml:"name"`
	Consumers       int            `toml:"consumers"`
	ConsumerDelayMS int            `toml:"consumer_delay_ms,omitempty"`
	Producers       []ProducerSpec `toml:"producers"`
}

func SampleScenarioFile() ScenarioFile {
	return ScenarioFile{
		Name:      "download",
		Consumers: 1,
		Producers: []ProducerSpec{
			{
				ID:      "downloader",
				Items:   10,
				DelayMS: 200,
			},
		},
	}
}

func (s *ScenarioFile) TotalItems() int {
	total := 0
	for _, p := range s.Producers {
		total += p.Items
	}
	return total
}

func (s *ScenarioFile) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name must be set")
	}
	if s.Consumers < 1 {
		return fmt.Errorf("consumers must be a positive integer")
	}
	if len(s.Producers) == 0 {
		return fmt.Errorf("at least one producer must be defined")
	}
	if s.ConsumerDelayMS < 0 {
		return fmt.Errorf("consumer_delay_ms must be non-negative")
	}
	seen := make(map[string]bool)
	for _, p := range s.Producers {
		if p.ID == "" {
			return fmt.Errorf("producer id must be set")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate producer id: %s", p.ID)
		}
		seen[p.ID] = true
		if p.Items < 0 {
			return fmt.Errorf("producer %s: items must be non-negative", p.ID)
		}
		if p.DelayMS < 0 {
			return fmt.Errorf("producer %s: delay_ms must be non-negative", p.ID)
		}
		if p.FailAfter > p.Items {
			return fmt.Errorf("producer %s: fail_after exceeds items", p.ID)
		}
	}
	return nil
}

func LoadScenarioFile(path string) (ScenarioFile, error) {
	scenario := ScenarioFile{}
	if _, err := os.Stat(path); err != nil {
		return ScenarioFile{}, fmt.Errorf("error reading scenario file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioFile{}, fmt.Errorf("error reading scenario file: %w", err)
	}
	if err := toml.Unmarshal(data, &scenario); err != nil {
		return ScenarioFile{}, fmt.Errorf("error unmarshalling scenario file: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return ScenarioFile{}, fmt.Errorf("invalid scenario: %w", err)
	}
	log.Debug().Msgf("Loaded scenario %s with %d producers and %d consumers",
		scenario.Name, len(scenario.Producers), scenario.Consumers)
	return scenario, nil
}
