// Package icnn implements input-convex neural networks.
//
// FICNN is convex in all of its inputs and PICNN in its second input only.
// Both rely on a set of non-negative "z-path" weights and a convex,
// non-decreasing activation. Training keeps the weights feasible by running
// a Projector after every optimizer step:
//
//	optimizer.Step(grads)
//	projector.Project(model)
//
// ConjugatePair trains two FICNNs against each other on the convex
// conjugate objective, with g maximizing what u minimizes.
package icnn
