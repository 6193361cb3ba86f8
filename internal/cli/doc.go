// Package cli implements the rankctl command line interface: analysis
// submission with progress polling, and one-shot status queries.
package cli
