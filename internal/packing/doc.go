// Package packing holds the cart-loading data model and validates candidate solutions:
// CheckCapacity counts carts within and over capacity, CheckAllPoints verifies that every
// item is loaded exactly once, and Assess combines both over a raw JSON solution.
package packing
