// Package claims extracts discrete claims from a transcript with a generative
// model.
//
// Parsing is two-tier. The model is asked for a JSON array of strings; when
// its answer decodes as one, the elements are the claims. Otherwise the output
// is read line by line, lines of more than 20 characters are kept, and list
// bullets are stripped. Parsing itself never fails.
package claims
