package content

import (
	_ "embed"
	"hash/fnv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// DungeonTemplate is a fully normalized dungeon definition
type DungeonTemplate struct {
	Tier         int
	Name         string
	StepDuration time.Duration
	Rooms        []entities.EncounterDefinition
}

// ExpeditionTemplate is a fully normalized expedition definition
type ExpeditionTemplate struct {
	Name          string
	Tier          int
	StageDuration time.Duration
	Stages        []entities.EncounterDefinition
}

// ArenaRules drives the arena's wave generator
type ArenaRules struct {
	WaveDuration      time.Duration
	BaseDifficulty    int
	DifficultyPerWave int
	BossWaveInterval  int
}

// raidBossTemplate is one entry in the weekly boss rotation
type raidBossTemplate struct {
	Name        string
	PrimaryStat entities.StatType
	Difficulty  int
	MaxHP       int
}

// Catalog serves normalized encounter templates. Templates pass through
// the adapter on load, so the same defaulting rules protect both the
// embedded fallback tables and remotely delivered records.
type Catalog struct {
	dungeons    map[int]DungeonTemplate
	expeditions map[string]ExpeditionTemplate
	arena       ArenaRules
	raidBosses  []raidBossTemplate
}

// raw YAML shapes

type rawCatalog struct {
	Dungeons []struct {
		Tier                int                       `yaml:"tier"`
		Name                string                    `yaml:"name"`
		StepDurationSeconds int                       `yaml:"step_duration_seconds"`
		Rooms               []ExternalEncounterRecord `yaml:"rooms"`
	} `yaml:"dungeons"`

	Arena struct {
		WaveDurationSeconds int `yaml:"wave_duration_seconds"`
		BaseDifficulty      int `yaml:"base_difficulty"`
		DifficultyPerWave   int `yaml:"difficulty_per_wave"`
		BossWaveInterval    int `yaml:"boss_wave_interval"`
	} `yaml:"arena"`

	Expeditions []struct {
		Name                 string                    `yaml:"name"`
		Tier                 int                       `yaml:"tier"`
		StageDurationSeconds int                       `yaml:"stage_duration_seconds"`
		Stages               []ExternalEncounterRecord `yaml:"stages"`
	} `yaml:"expeditions"`

	RaidBosses []struct {
		Name        string `yaml:"name"`
		PrimaryStat string `yaml:"primary_stat"`
		Difficulty  int    `yaml:"difficulty"`
		MaxHP       int    `yaml:"max_hp"`
	} `yaml:"raid_bosses"`
}

// LoadCatalog parses the embedded fallback tables
func LoadCatalog() (*Catalog, error) {
	return LoadCatalogFromBytes(embeddedTemplates)
}

// LoadCatalogFromBytes parses a catalog from raw YAML. Individual bad
// enum values inside records are defaulted by the adapter; only YAML that
// does not parse at all is an error.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse content templates")
	}

	c := &Catalog{
		dungeons:    make(map[int]DungeonTemplate),
		expeditions: make(map[string]ExpeditionTemplate),
	}

	for _, d := range raw.Dungeons {
		tmpl := DungeonTemplate{
			Tier:         d.Tier,
			Name:         d.Name,
			StepDuration: time.Duration(d.StepDurationSeconds) * time.Second,
		}
		for _, room := range d.Rooms {
			tmpl.Rooms = append(tmpl.Rooms, ToEncounterDefinition(room))
		}
		c.dungeons[d.Tier] = tmpl
	}

	for _, e := range raw.Expeditions {
		tmpl := ExpeditionTemplate{
			Name:          e.Name,
			Tier:          e.Tier,
			StageDuration: time.Duration(e.StageDurationSeconds) * time.Second,
		}
		for _, stage := range e.Stages {
			tmpl.Stages = append(tmpl.Stages, ToEncounterDefinition(stage))
		}
		c.expeditions[e.Name] = tmpl
	}

	c.arena = ArenaRules{
		WaveDuration:      time.Duration(raw.Arena.WaveDurationSeconds) * time.Second,
		BaseDifficulty:    raw.Arena.BaseDifficulty,
		DifficultyPerWave: raw.Arena.DifficultyPerWave,
		BossWaveInterval:  raw.Arena.BossWaveInterval,
	}
	if c.arena.BossWaveInterval <= 0 {
		c.arena.BossWaveInterval = 5
	}

	for _, b := range raw.RaidBosses {
		stat, _ := entities.ParseStatType(b.PrimaryStat)
		c.raidBosses = append(c.raidBosses, raidBossTemplate{
			Name:        b.Name,
			PrimaryStat: stat,
			Difficulty:  b.Difficulty,
			MaxHP:       b.MaxHP,
		})
	}

	return c, nil
}

// Dungeon returns the template for a tier
func (c *Catalog) Dungeon(tier int) (*DungeonTemplate, error) {
	tmpl, ok := c.dungeons[tier]
	if !ok {
		return nil, errors.NotFoundf("no dungeon template for tier %d", tier)
	}
	return &tmpl, nil
}

// Expedition returns the template with the given name
func (c *Catalog) Expedition(name string) (*ExpeditionTemplate, error) {
	tmpl, ok := c.expeditions[name]
	if !ok {
		return nil, errors.NotFoundf("no expedition template named %q", name)
	}
	return &tmpl, nil
}

// Arena returns the arena wave rules
func (c *Catalog) Arena() ArenaRules {
	return c.arena
}

// ArenaWave generates the encounter for one wave. Waves are unbounded;
// difficulty climbs linearly and every Nth wave is a boss wave.
func (c *Catalog) ArenaWave(wave int) entities.EncounterDefinition {
	if wave < 0 {
		wave = 0
	}

	enc := entities.EncounterDefinition{
		Name:            "Wave",
		Category:        entities.CategoryCombat,
		PrimaryStat:     entities.StatStrength,
		Difficulty:      c.arena.BaseDifficulty + c.arena.DifficultyPerWave*wave,
		BonusLootChance: 1.0,
	}
	if enc.Difficulty < 1 {
		enc.Difficulty = 1
	}

	if (wave+1)%c.arena.BossWaveInterval == 0 {
		enc.Category = entities.CategoryBoss
		enc.Boss = true
		enc.BonusLootChance = 1.5
	}

	return enc
}

// RaidBossForWeek deterministically selects this week's boss from the
// rotation and instantiates it at full HP. Every player sees the same
// boss for a given week key.
func (c *Catalog) RaidBossForWeek(weekKey string) (*entities.RaidBoss, error) {
	if len(c.raidBosses) == 0 {
		return nil, errors.NotFound("raid boss rotation is empty")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(weekKey))
	tmpl := c.raidBosses[int(h.Sum32())%len(c.raidBosses)]

	return &entities.RaidBoss{
		WeekKey:     weekKey,
		Name:        tmpl.Name,
		PrimaryStat: tmpl.PrimaryStat,
		Difficulty:  tmpl.Difficulty,
		MaxHP:       tmpl.MaxHP,
		HP:          tmpl.MaxHP,
	}, nil
}
