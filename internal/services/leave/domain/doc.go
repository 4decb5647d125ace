// Package domain holds the leave-accounting model: the closed set of leave
// categories, per-employee balances, leave requests and the date-interval
// rules that decide whether two requests overlap.
//
// The package is pure: it performs no I/O and knows nothing about storage
// or transports.
package domain
