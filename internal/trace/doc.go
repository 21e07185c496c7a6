// Package trace records what a mounted form and its session store did, in
// logical-clock order.
//
// A Recorder collects Entries stamped by a Sequencer (engine.Clock in the CLI,
// testutil.SeqClock in tests). Entries serialize to canonical JSON (sorted
// keys, NFC-normalized strings, no HTML escaping) so that two runs of the
// same scenario compare byte-for-byte against a golden file.
package trace
