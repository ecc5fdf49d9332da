// Package audit implements the four pipeline agents of a file audit: file
// analysis, batch processing, aggregation and security analysis.
//
// Each agent is an agent.Executor wrapped by agent.New, so callers get the
// shared lifecycle (status, timing, run records) for free. None of them read
// file contents; every computation works on in-memory descriptors.
package audit
