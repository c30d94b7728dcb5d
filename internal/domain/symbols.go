package domain

var defaultCatalog = []Symbol{
	// people and feelings
	"Heart", "Brain", "Star", "Crown", "Trophy", "Medal", "Gift", "Rose", "BicepsFlexed", "BedDouble",
	// nature
	"Sun", "Moon", "Cloud", "Flame", "Leaf", "Flower", "Feather", "Mountain", "Fish", "Rabbit", "Bird",
	// everyday objects
	"Coffee", "BookA", "Calendar1", "Watch", "Smartphone", "Key", "Umbrella", "Palette", "Music", "Lightbulb",
	// machines
	"Camera", "Briefcase", "Bus", "Helicopter", "Tractor", "Rocket", "EvCharger", "FireExtinguisher",
	// protection
	"Shield", "Anchor", "Flag", "ChessKnight",
	// tech
	"Wifi", "Target", "Globe", "Aperture", "DraftingCompass", "Disc3", "Radio", "Bug", "Hexagon",
	// misc
	"Eye", "Wind", "Compass", "Box",
}

// DefaultCatalog returns a copy of the built-in symbol set.
func DefaultCatalog() []Symbol {
	return append([]Symbol(nil), defaultCatalog...)
}

// MaxCards returns the largest board a catalog supports.
func MaxCards(catalog []Symbol) int {
	return 2 * len(catalog)
}
