package director_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbellingham/stagecraft/internal/director"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadPresets_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tavern_brawl.yaml"), `
name: "Tavern Brawl"
description: "High-tension bar scene before the fight breaks out."
context:
  scene_notes: "The Rusty Anchor is packed and everyone is armed."
  tone: tense
  npc_motivations:
    - character_id: barkeep
      mood: nervous
      immediate_goal: "Defuse the argument before chairs fly."
      secret_agenda: "Protect the smuggled cargo under the floorboards."
  forbidden_topics:
    - "the king's death"
`)
	presets, err := director.LoadPresets(dir)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	p := presets[0]
	assert.Equal(t, "Tavern Brawl", p.Name)
	assert.Equal(t, "tense", p.Context.Tone)
	require.Len(t, p.Context.NpcMotivations, 1)
	assert.Equal(t, "barkeep", p.Context.NpcMotivations[0].CharacterID)
	assert.Equal(t, "Protect the smuggled cargo under the floorboards.", p.Context.NpcMotivations[0].SecretAgenda)
	assert.Equal(t, []string{"the king's death"}, p.Context.ForbiddenTopics)
}

func TestLoadPresets_SortsByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "name: Zealot's Vigil\n")
	writeFile(t, filepath.Join(dir, "a.yml"), "name: Ambush\n")
	presets, err := director.LoadPresets(dir)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "Ambush", presets[0].Name)
	assert.Equal(t, "Zealot's Vigil", presets[1].Name)
}

func TestLoadPresets_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	presets, err := director.LoadPresets(dir)
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestLoadPresets_MissingDir(t *testing.T) {
	_, err := director.LoadPresets(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadPresets_RejectsNameless(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.yaml"), "description: no name here\n")
	_, err := director.LoadPresets(dir)
	assert.ErrorContains(t, err, "no name")
}

func TestLoadPresets_IgnoresNonYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a preset")
	writeFile(t, filepath.Join(dir, "real.yaml"), "name: Real\n")
	presets, err := director.LoadPresets(dir)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Real", presets[0].Name)
}

func TestFind_CaseInsensitive(t *testing.T) {
	presets := []*director.Preset{{Name: "Ambush"}, {Name: "Tavern Brawl"}}
	assert.Same(t, presets[1], director.Find(presets, "tavern brawl"))
	assert.Nil(t, director.Find(presets, "unknown"))
}
