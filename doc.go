// Package psygo provides adaptive psychophysical modeling for Go,
// centered on a monotonicity-constrained Gaussian process fit by
// variational inference and sampled by rejection.
//
// The library models a subject's latent perceptual function from binary
// (detected / not detected) or continuous responses, and exposes the
// posterior so an experiment-strategy layer can pick the next stimulus.
//
// # Quick Start
//
// Fitting a detection threshold along the second stimulus dimension:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/adaptive-psych/psygo/gp"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    m, err := gp.NewMonotonicRejectionGP(
//	        []int{1},            // monotonic in dimension 1
//	        []float64{0, 0},     // lower bounds
//	        []float64{4, 4},     // upper bounds
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    X := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
//	    y := mat.NewVecDense(3, []float64{0, 1, 1})
//	    if err := m.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    mean, variance, err := m.Predict(X, true)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mean, variance)
//	}
//
// # Packages
//
//   - gp: the monotonic rejection GP, kernels, likelihoods, priors, and
//     the rejection sampler
//   - core/model: estimator contract, fitted-state management, parameter
//     snapshots for warm starts
//   - core/parallel: parallel processing utilities
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging interface
//
// # License
//
// psygo is released under the MIT License.
package psygo
