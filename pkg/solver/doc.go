// Package solver minimizes composed ration programs. The default
// implementation is a thin adapter over gonum's simplex method.
package solver
