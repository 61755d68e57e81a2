// Package main hosts the tidy CLI entrypoint and command graph.
//
// Each subcommand maps flags onto a workflow request, falling back to the
// configuration file for anything not given on the command line. Report
// lines go to stdout as files are processed; logs go to stderr and, when a
// log directory is configured, to a JSON log file.
package main
