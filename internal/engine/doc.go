// Package engine runs the redirector pipeline over loaded store records.
//
// The pipeline is a pure function of its input:
//
//	records ──assign──▶ canonical mapping ──optimize──▶ rule chain ──render──▶ files
//
// Run performs no I/O. Callers load records (see package store) before Run
// and write files (see render.Write) after it, so a failing run never
// leaves a partial set of snippets behind.
package engine
