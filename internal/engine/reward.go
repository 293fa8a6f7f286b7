package engine

import (
	"fmt"

	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/pkg/idgen"
	"github.com/questbound/quest-api/internal/pkg/rng"
)

// Base drop gate chances, scaled by the encounter's bonus loot chance
const (
	equipmentDropChance = 0.15
	materialDropChance  = 0.30
	cardDropChance      = 0.10

	// bossPayoutMultiplier doubles base XP and gold on boss/milestone steps
	bossPayoutMultiplier = 2

	// riskyApproachThreshold marks approaches whose power multiplier is
	// high enough to earn a reward bonus on top of the base payout
	riskyApproachThreshold = 1.1
)

// rarityWeight is one row of the weighted rarity table
type rarityWeight struct {
	rarity entities.Rarity
	weight int
}

// rarityTable returns the weighted rarity distribution for a tier.
// Higher tiers shift weight toward the top of the table.
func rarityTable(tier int) []rarityWeight {
	if tier < 1 {
		tier = 1
	}
	return []rarityWeight{
		{entities.RarityCommon, 60},
		{entities.RarityUncommon, 25 + 2*tier},
		{entities.RarityRare, 10 + 2*tier},
		{entities.RarityEpic, 4 + tier},
		{entities.RarityLegendary, 1 + tier/2},
	}
}

// rollRarity picks a rarity by weighted random selection
func rollRarity(tier int, r rng.Roller) entities.Rarity {
	table := rarityTable(tier)
	total := 0
	for _, row := range table {
		total += row.weight
	}

	roll := r.IntN(total)
	cumulative := 0
	for _, row := range table {
		cumulative += row.weight
		if roll < cumulative {
			return row.rarity
		}
	}
	return table[len(table)-1].rarity
}

var rarityBonus = map[entities.Rarity]int{
	entities.RarityCommon:    1,
	entities.RarityUncommon:  2,
	entities.RarityRare:      4,
	entities.RarityEpic:      7,
	entities.RarityLegendary: 12,
}

var equipmentNames = map[entities.EquipmentSlot][]string{
	entities.SlotWeapon:  {"Oathkeeper Blade", "Duskfang Dagger", "Stormcaller Staff", "Wyrmbone Bow"},
	entities.SlotArmor:   {"Wardenplate", "Shadowweave Cloak", "Runestitched Robe", "Trailworn Leathers"},
	entities.SlotTrinket: {"Emberheart Charm", "Lodestone Ring", "Whisperglass Amulet", "Luckbound Token"},
}

var equipmentSlots = []entities.EquipmentSlot{
	entities.SlotWeapon,
	entities.SlotArmor,
	entities.SlotTrinket,
}

var materialsByTier = [][]string{
	{"iron shard", "rough hide", "tallow"},
	{"silver filings", "cured leather", "glowmoss"},
	{"mithril dust", "wyvern scale", "starlit resin"},
}

var cardNames = []string{
	"The Wanderer", "The Sentinel", "The Trickster",
	"The Oracle", "The Beast", "The Twin Flames",
}

// StepInput carries everything the reward calculator needs to resolve the
// payout of one already-decided step.
type StepInput struct {
	StepIndex int
	Tier      int
	Success   bool
	Encounter entities.EncounterDefinition
	Approach  *entities.Approach

	// Power is the approach-modified value used for the success roll.
	// BasePower is un-multiplied and feeds failure damage.
	Power     int
	BasePower int
}

// ComputeStepReward produces the StepResult for one step. Success pays XP
// and gold scaling with step index and tier, doubled on boss steps, with a
// further bonus for risky approaches; it then runs the independent loot
// gates. Failure pays nothing and costs HP per FailureDamage.
func ComputeStepReward(in StepInput, r rng.Roller, ids idgen.Generator) entities.StepResult {
	result := entities.StepResult{
		StepIndex:  in.StepIndex,
		Success:    in.Success,
		Power:      in.Power,
		Difficulty: in.Encounter.Difficulty,
		Narrative:  Narrative(in.Encounter.Category, in.Success, r),
	}
	if in.Approach != nil {
		result.Approach = in.Approach.Name
	}

	if !in.Success {
		result.HPLost = FailureDamage(in.BasePower, in.Encounter.Difficulty, in.Approach)
		return result
	}

	tier := in.Tier
	if tier < 1 {
		tier = 1
	}

	xp := (20 + 10*in.StepIndex) * tier
	gold := (10 + 5*in.StepIndex) * tier

	if in.Encounter.Boss || in.Encounter.Category == entities.CategoryBoss {
		xp *= bossPayoutMultiplier
		gold *= bossPayoutMultiplier
	}

	if in.Approach != nil && in.Approach.PowerMultiplier > riskyApproachThreshold {
		bonus := (in.Approach.PowerMultiplier-1.0)*0.5 + 1.0
		xp = int(float64(xp) * bonus)
		gold = int(float64(gold) * bonus)
	}

	result.XP = xp
	result.Gold = gold
	result.Drops = rollDrops(in.Encounter, tier, r, ids)

	return result
}

// rollDrops runs the independent loot gates. Each gate is its own trial;
// a generous bonus loot chance widens all of them.
func rollDrops(enc entities.EncounterDefinition, tier int, r rng.Roller, ids idgen.Generator) []entities.Drop {
	lootScale := enc.BonusLootChance
	if lootScale <= 0 {
		lootScale = 1.0
	}

	var drops []entities.Drop

	if r.Float64() < equipmentDropChance*lootScale {
		eq := rollEquipment(enc, tier, r, ids)
		drops = append(drops, entities.Drop{Kind: entities.DropEquipment, Equipment: &eq})
	}

	if r.Float64() < materialDropChance*lootScale {
		mat := rollMaterial(tier, r)
		drops = append(drops, entities.Drop{Kind: entities.DropMaterial, Material: &mat})
	}

	if r.Float64() < cardDropChance*lootScale {
		card := rollCard(tier, r, ids)
		drops = append(drops, entities.Drop{Kind: entities.DropCard, Card: &card})
	}

	return drops
}

func rollEquipment(enc entities.EncounterDefinition, tier int, r rng.Roller, ids idgen.Generator) entities.Equipment {
	slot := equipmentSlots[r.IntN(len(equipmentSlots))]
	names := equipmentNames[slot]
	rarity := rollRarity(tier, r)

	eq := entities.Equipment{
		ID:               ids.Generate(),
		Name:             names[r.IntN(len(names))],
		Rarity:           rarity,
		Slot:             slot,
		PrimaryStat:      enc.PrimaryStat,
		StatBonus:        rarityBonus[rarity] + tier,
		LevelRequirement: 1 + (tier-1)*5,
	}

	// Rare and better gear carries a secondary stat
	if rarityBonus[rarity] >= rarityBonus[entities.RarityRare] {
		eq.SecondaryStat = entities.AllStats[r.IntN(len(entities.AllStats))]
	}

	return eq
}

func rollMaterial(tier int, r rng.Roller) entities.MaterialStack {
	row := tier - 1
	if row < 0 {
		row = 0
	}
	if row >= len(materialsByTier) {
		row = len(materialsByTier) - 1
	}
	pool := materialsByTier[row]

	return entities.MaterialStack{
		Material: pool[r.IntN(len(pool))],
		Quantity: 1 + r.IntN(3),
	}
}

func rollCard(tier int, r rng.Roller, ids idgen.Generator) entities.Card {
	return entities.Card{
		ID:     ids.Generate(),
		Name:   fmt.Sprintf("%s %s", cardNames[r.IntN(len(cardNames))], romanTier(tier)),
		Rarity: rollRarity(tier, r),
	}
}

func romanTier(tier int) string {
	numerals := []string{"I", "II", "III", "IV", "V"}
	if tier < 1 {
		return numerals[0]
	}
	if tier > len(numerals) {
		return numerals[len(numerals)-1]
	}
	return numerals[tier-1]
}
