// Package model assembles a cow group's ration problem as a linear program:
// per-ingredient decision variables, intake and nutrient constraints, and
// cost and methane expressions composed into a single objective.
package model
