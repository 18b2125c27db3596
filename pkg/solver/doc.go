// Package solver implements the distance-constraint engine for Trestle:
// constraint collection over an assembly, a Gauss-Seidel-style relaxation
// solver with inverse-stiffness weighting, and the plan validate/apply
// cycle that commits solver output atomically.
package solver
