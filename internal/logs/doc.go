// Package logs reads the daemon log file for `subsyncarr logs`.
//
// Last returns the trailing lines, Follow polls for new ones. Both accept a
// Filter; RunFilter narrows output to a single sync run by its run_id field
// in either console or JSON format.
package logs
