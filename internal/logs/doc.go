// Package logs reads the server log file for the `factcheck logs` command.
//
// Last returns the trailing lines with bounded memory. Follow polls for new
// lines until its context ends and survives truncation. Both accept a Filter
// so a single request ID can be isolated from concurrent runs.
package logs
