// Package gofit provides a lightweight training-loop orchestrator for Go,
// designed for gradient-based models whose gradients are computed by hand.
//
// gofit separates the mechanics of a training run (epoch iteration, batch
// dispatch, loss accounting, learning-rate scheduling, early termination)
// from the model itself. A model only has to implement the small
// model.Module interface; the Trainer drives everything else through a
// fixed sequence of overridable lifecycle stages.
//
// # Features
//
// - Fixed training lifecycle: fit → evaluate → checkpoint → terminate per epoch
// - Whitelisted callbacks to override any stage without subclassing
// - SGD and Adam optimizers with pluggable learning-rate schedulers
// - Sample-weighted running loss metering and per-run history
// - Structured logging for every stage of the run
//
// # Installation
//
// Install gofit using go get:
//
//	go get github.com/YuminosukeSato/gofit
//
// # Quick Start
//
// Training a linear model on an in-memory dataset:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/YuminosukeSato/gofit/models"
//	    "github.com/YuminosukeSato/gofit/train"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})
//
//	    model, _ := models.NewLinear(1, 1, 42)
//	    opt, _ := train.NewSGD(model.Parameters(), 0.1)
//	    loader, _ := train.NewMatrixLoader(X, y, 2, true, 42)
//
//	    trainer, err := train.NewTrainer(
//	        model, loader, nil,
//	        train.NewMSELoss(), opt, nil,
//	        train.Config{Epochs: 100},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := trainer.Fit(context.Background()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - train: Trainer, data loaders, criteria, optimizers, schedulers, callbacks
//   - models: Reference model.Module implementations (Linear, MLP)
//   - metrics: AverageMeter and training History
//   - preprocessing: StandardScaler, MinMaxScaler and the batch preprocess hook
//   - core/model: Module, Parameter, Batch and the estimator interfaces
//   - pkg/errors: Typed errors, warnings and numerical-stability helpers
//   - pkg/log: Structured logging facade used across the library
package gofit
