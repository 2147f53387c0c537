// Package ingredient parses free-form ingredient lines into name, quantity
// and unit, and converts metric measurements to US units.
//
// Parsing never fails: a line without a recognizable quantity comes back
// with the normalized text as its name and no quantity or unit.
//
//	p := ingredient.NewParser()
//	ing := p.Parse("1 1/2 cups milk") // {Name: "milk", Measurement: "1 1/2", UnitType: "cup"}
package ingredient
