// Package gp implements the monotonic rejection Gaussian process used for
// adaptive psychophysical experimentation.
//
// The model follows the insight of Riihimäki & Vehtari (2010) that the
// derivative of a GP is itself a GP: an unconstrained variational GP is fit
// over an augmented input space that jointly represents function values and
// partial derivatives, and monotonic posterior samples are then obtained by
// rejection, discarding joint draws whose derivative values at the
// constraint points are negative.
//
// Inputs are augmented with a trailing derivative index: 0 observes the
// function value, k > 0 observes the partial derivative with respect to
// dimension k-1. The kernel and mean honor this convention with closed-form
// derivative cross-covariances of the base RBF kernel.
package gp
