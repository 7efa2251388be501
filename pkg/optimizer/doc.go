// Package optimizer runs the full ration pipeline: split the herd, derive
// each group's requirement envelope, build and solve its linear program, and
// interpret the optima into feeding plans.
package optimizer
