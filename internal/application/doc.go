// Package application provides application initialization and dependency wiring.
// It opens the problem supplier, builds the packing strategy, the evaluation loop,
// the metrics registry, handlers, routers and the HTTP server, making the main
// package cleaner and more focused on CLI parsing and orchestration.
package application
