// Package report exports the results recorded during a model run as YAML.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/sosgridgo/internal/resultstore"
	"gopkg.in/yaml.v3"
)

// Report is the exported form of one model run's results.
type Report struct {
	Run       string     `yaml:"run"`
	Timesteps []Timestep `yaml:"timesteps"`
}

// Timestep holds every model's outputs at one timestep.
type Timestep struct {
	Timestep int     `yaml:"timestep"`
	Models   []Model `yaml:"models"`
}

// Model holds one model's outputs.
type Model struct {
	Name    string   `yaml:"name"`
	Outputs []Output `yaml:"outputs"`
}

// Output is one named region x interval array.
type Output struct {
	Name   string      `yaml:"name"`
	Values [][]float64 `yaml:"values,flow"`
}

// Build collects everything recorded in store, sorted by timestep, model
// name and output name.
func Build(ctx context.Context, run string, store resultstore.Store) (*Report, error) {
	timesteps, err := store.Timesteps(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{Run: run, Timesteps: make([]Timestep, 0, len(timesteps))}
	for _, t := range timesteps {
		results, err := store.Timestep(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("timestep %d: %w", t, err)
		}
		ts := Timestep{Timestep: t}
		for _, name := range sortedKeys(results) {
			data := results[name]
			m := Model{Name: name}
			for _, out := range sortedKeys(data) {
				m.Outputs = append(m.Outputs, Output{Name: out, Values: data[out].Clone()})
			}
			ts.Models = append(ts.Models, m)
		}
		r.Timesteps = append(r.Timesteps, ts)
	}
	return r, nil
}

// Write encodes r as YAML.
func Write(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return enc.Close()
}

// WriteFile writes r to dir/<run>.yaml, creating dir when needed, and
// returns the path written.
func WriteFile(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, r.Run+".yaml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Write(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// Read decodes a report previously written by Write.
func Read(rd io.Reader) (*Report, error) {
	var r Report
	if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
