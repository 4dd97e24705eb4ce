// Package agent contains the pipeline stages: the query decomposer, the CAPA
// record filter, the graph lookup, the clinical document search and the
// consolidator, plus the sequential coordinator that runs them in order.
//
// Stages communicate exclusively through session state. Each stage reads the
// results of its predecessors under well-known keys (see the core.StateKey*
// constants), stores its own result and emits a progress event. Stage-level
// failures are recorded inside the stage result rather than returned as
// errors, so a degraded stage never stops the pipeline; only infrastructure
// failures and cancellation abort a run.
package agent
