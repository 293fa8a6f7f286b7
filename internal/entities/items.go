package entities

// Rarity grades equipment and card drops
type Rarity string

// Rarities, lowest to highest
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// EquipmentSlot identifies where a piece of equipment is worn
type EquipmentSlot string

// Equipment slots
const (
	SlotWeapon  EquipmentSlot = "weapon"
	SlotArmor   EquipmentSlot = "armor"
	SlotTrinket EquipmentSlot = "trinket"
)

// Equipment is a fully specified gear drop
type Equipment struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Rarity           Rarity        `json:"rarity"`
	Slot             EquipmentSlot `json:"slot"`
	PrimaryStat      StatType      `json:"primary_stat"`
	SecondaryStat    StatType      `json:"secondary_stat,omitempty"`
	StatBonus        int           `json:"stat_bonus"`
	LevelRequirement int           `json:"level_requirement"`
	Equipped         bool          `json:"equipped"`
}

// MaterialStack is a quantity of one crafting material
type MaterialStack struct {
	Material string `json:"material"`
	Quantity int    `json:"quantity"`
}

// Card is a collectible card drop
type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
}

// DropKind tags the Drop variant
type DropKind string

// Drop kinds
const (
	DropEquipment DropKind = "equipment"
	DropMaterial  DropKind = "material"
	DropCard      DropKind = "card"
	DropCurrency  DropKind = "currency"
)

// Drop is a closed tagged variant over the reward item types. Exactly one
// payload field is set, matching Kind.
type Drop struct {
	Kind      DropKind       `json:"kind"`
	Equipment *Equipment     `json:"equipment,omitempty"`
	Material  *MaterialStack `json:"material,omitempty"`
	Card      *Card          `json:"card,omitempty"`
	Gold      int            `json:"gold,omitempty"`
}

// ApplyTo inserts the drop into the character's inventory or wallet
func (d Drop) ApplyTo(c *Character) {
	switch d.Kind {
	case DropEquipment:
		if d.Equipment != nil {
			c.Inventory.Equipment = append(c.Inventory.Equipment, *d.Equipment)
		}
	case DropMaterial:
		if d.Material != nil {
			c.Inventory.AddMaterial(d.Material.Material, d.Material.Quantity)
		}
	case DropCard:
		if d.Card != nil {
			c.Inventory.Cards = append(c.Inventory.Cards, *d.Card)
		}
	case DropCurrency:
		if d.Gold > 0 {
			c.Gold += d.Gold
		}
	}
}

// Inventory holds a character's owned items
type Inventory struct {
	Equipment []Equipment     `json:"equipment"`
	Materials []MaterialStack `json:"materials"`
	Cards     []Card          `json:"cards"`
}

// AddMaterial stacks a material onto an existing entry or appends a new one
func (inv *Inventory) AddMaterial(material string, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range inv.Materials {
		if inv.Materials[i].Material == material {
			inv.Materials[i].Quantity += quantity
			return
		}
	}
	inv.Materials = append(inv.Materials, MaterialStack{Material: material, Quantity: quantity})
}
