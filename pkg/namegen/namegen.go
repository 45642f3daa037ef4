// Package namegen generates default usernames of the form
// "<Adjective><Noun>#<100-999>" for freshly registered accounts.
package namegen

import (
	"fmt"
	"math/rand/v2"
)

var adjectives = []string{
	"Swift", "Brave", "Clever", "Mighty", "Fierce", "Nimble", "Bold", "Wise", "Loyal", "Silent",
	"Dark", "Frozen", "Shadow", "Azure", "Golden", "Silver", "Mystic", "Raging", "Wild", "Noble",
	"Savage", "Epic", "Divine", "Iron", "Steel", "Deadly", "Lethal", "Fatal", "Doom", "Chaos",
	"Cosmic", "Lunar", "Solar", "Storm", "Venom", "Toxic", "Cursed", "Bright", "Dread", "Grim",
	"Primal", "Royal", "Arcane", "Feral", "Bleak", "Ashen", "Neon", "Omega", "Alpha", "Prime",
}

var nouns = []string{
	"Lion", "Eagle", "Wolf", "Tiger", "Dragon", "Bear", "Shark", "Falcon", "Knight", "Hunter",
	"Ranger", "Ninja", "Titan", "Demon", "Angel", "Spirit", "Reaper", "Slayer", "Viper", "Cobra",
	"Raven", "Hawk", "Sphinx", "Hydra", "Kraken", "Blaze", "Storm", "Meteor", "Ghost", "Blade",
	"Fang", "Claw", "Scythe", "Spear", "Sword", "Axe", "Mage", "Monk", "Wrath", "Forge",
	"Frost", "Flame", "Beast", "Wyrm", "Drake", "Fiend", "Golem", "Spectre", "Wraith", "Ogre",
}

// Generate returns a username like "SwiftLion#123". Uniqueness is not
// guaranteed; callers that need it must retry on collision.
func Generate() string {
	adjective := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	number := 100 + rand.IntN(900)

	return fmt.Sprintf("%s%s#%d", adjective, noun, number)
}
