// Package requirement turns a cow group's observed intake and energy needs
// into the per-day nutrient envelope its ration must satisfy.
package requirement
