// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownKey(t *testing.T) {
	table := NewStrategyTable()
	s := table.Resolve("long_covid", "Long COVID")
	assert.Equal(t, []string{"long covid", "post-covid", "post covid syndrome", "covid-19 sequelae"}, s.Variants)
	assert.Equal(t, "MONDO,HP,NCIT,DOID", s.Ontologies)
}

func TestResolveUnknownKeyFallsBack(t *testing.T) {
	table := NewStrategyTable()

	s := table.Resolve("brain_fog", "Brain Fog")
	assert.Equal(t, []string{"Brain Fog", "brain fog"}, s.Variants)
	assert.Equal(t, "MONDO,HP,NCIT", s.Ontologies)

	// Already-lowercase labels produce a single variant.
	s = table.Resolve("brain_fog", "brain fog")
	assert.Equal(t, []string{"brain fog"}, s.Variants)
}

func TestLoadFileMergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	content := `
dysautonomia:
  variants: ["dysautonomia", "autonomic dysfunction"]
  ontologies: "HP,MONDO"
fatigue:
  variants: ["fatigue only"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table := NewStrategyTable()
	require.NoError(t, table.LoadFile(path))

	s := table.Resolve("dysautonomia", "Dysautonomia")
	assert.Equal(t, []string{"dysautonomia", "autonomic dysfunction"}, s.Variants)
	assert.Equal(t, "HP,MONDO", s.Ontologies)

	// Override replaces the builtin; missing ontologies get the fallback set.
	s = table.Resolve("fatigue", "fatigue")
	assert.Equal(t, []string{"fatigue only"}, s.Variants)
	assert.Equal(t, "MONDO,HP,NCIT", s.Ontologies)

	// Untouched builtins survive.
	s = table.Resolve("Disease", "x")
	assert.Equal(t, "MONDO,HP,DOID,NCIT", s.Ontologies)
}

func TestLoadFileRejectsEmptyVariants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bad:\n  ontologies: HP\n"), 0o644))

	table := NewStrategyTable()
	assert.Error(t, table.LoadFile(path))
}

func TestLoadFileMissing(t *testing.T) {
	table := NewStrategyTable()
	assert.Error(t, table.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}
