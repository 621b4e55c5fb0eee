// Command factcheck turns an online video into a transcript and a list of
// checkable claims.
//
// `factcheck serve` runs the HTTP API. The info, transcribe, and extract
// subcommands run the same pipeline once from the terminal. Status reports
// configuration and tool readiness, and logs tails the server log. Output is
// a table on a terminal and JSON when piped or with --json.
package main
