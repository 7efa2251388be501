// Package ration interprets solver output as a feeding plan: per-ingredient
// as-fed amounts and the diet's cost, intake, nutrient, and methane totals.
package ration
