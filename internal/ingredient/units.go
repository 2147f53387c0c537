package ingredient

// unitVariant maps a spelling found in recipes to its canonical unit.
type unitVariant struct {
	variant   string
	canonical string
}

// unitVariants are tried in order; the first variant followed by a word
// boundary wins, so "cups" is preferred over "c" and "gr" over "g".
var unitVariants = []unitVariant{
	// Volume
	{"tsp", "teaspoon"},
	{"tsps", "teaspoon"},
	{"teaspoon", "teaspoon"},
	{"teaspoons", "teaspoon"},
	{"t", "teaspoon"},
	{"tbsp", "tablespoon"},
	{"tbsps", "tablespoon"},
	{"tablespoon", "tablespoon"},
	{"tablespoons", "tablespoon"},
	{"tbs", "tablespoon"},
	{"tb", "tablespoon"},
	{"cup", "cup"},
	{"cups", "cup"},
	{"c", "cup"},
	{"fl oz", "fluid ounce"},
	{"fluid ounce", "fluid ounce"},
	{"fluid ounces", "fluid ounce"},
	{"oz fl", "fluid ounce"},
	{"pint", "pint"},
	{"pints", "pint"},
	{"pt", "pint"},
	{"quart", "quart"},
	{"quarts", "quart"},
	{"qt", "quart"},
	{"gallon", "gallon"},
	{"gallons", "gallon"},
	{"gal", "gallon"},
	{"ml", "milliliter"},
	{"milliliter", "milliliter"},
	{"milliliters", "milliliter"},
	{"millilitre", "milliliter"},
	{"millilitres", "milliliter"},
	{"cc", "milliliter"},
	{"l", "liter"},
	{"liter", "liter"},
	{"liters", "liter"},
	{"litre", "liter"},
	{"litres", "liter"},

	// Weight
	{"lb", "pound"},
	{"lbs", "pound"},
	{"pound", "pound"},
	{"pounds", "pound"},
	{"#", "pound"},
	{"oz", "ounce"},
	{"ounce", "ounce"},
	{"ounces", "ounce"},
	{"g", "gram"},
	{"gram", "gram"},
	{"grams", "gram"},
	{"gr", "gram"},
	{"kg", "kilogram"},
	{"kilogram", "kilogram"},
	{"kilograms", "kilogram"},
	{"kilo", "kilogram"},
	{"kilos", "kilogram"},

	// Count and informal
	{"pinch", "pinch"},
	{"pinches", "pinch"},
	{"pn", "pinch"},
	{"dash", "dash"},
	{"dashes", "dash"},
	{"handful", "handful"},
	{"handfuls", "handful"},
	{"slice", "slice"},
	{"slices", "slice"},
	{"piece", "piece"},
	{"pieces", "piece"},
	{"clove", "clove"},
	{"cloves", "clove"},
	{"bunch", "bunch"},
	{"bunches", "bunch"},
	{"sprig", "sprig"},
	{"sprigs", "sprig"},
	{"stalk", "stalk"},
	{"stalks", "stalk"},
	{"head", "head"},
	{"heads", "head"},
	{"can", "can"},
	{"cans", "can"},
	{"jar", "jar"},
	{"jars", "jar"},
	{"package", "package"},
	{"packages", "package"},
	{"pkg", "package"},
	{"box", "box"},
	{"boxes", "box"},
	{"stick", "stick"},
	{"sticks", "stick"},
}
