// Package sink provides TriggerSink and ExecutionSink implementations that
// report, record, publish or persist each dispatch call. Every concrete sink
// implements both interfaces so one value can observe a whole run.
package sink
