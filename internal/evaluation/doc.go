// Package evaluation runs a packing strategy over every problem of a supplier and reports
// one verdict per problem.
//
// Problems are evaluated strictly one after another. Each problem is fetched, handed to the
// strategy as a private copy, judged and reported before the next one is fetched. A strategy
// that fails or panics only fails its own problem; a supplier failure ends the run.
package evaluation
