// Package advisor is the knowledge-driven recommendation core for HLS
// directive selection.
//
// # Reading Guide
//
// Start with these three files to understand the recommendation pipeline:
//   - projector.go: fitted linear projection of source-code feature vectors
//   - retriever.go: cluster selection and Pareto candidate merging/ranking
//   - session.go: the refinement state machine that reacts to synthesis outcomes
//
// # Architecture
//
// The advisor package defines interfaces and the pipeline; implementations
// live in sub-packages:
//   - advisor/kb/: knowledge-base snapshots (YAML+CSV layout, SQLite store, LOO views)
//   - advisor/synth/: synthesis adapters (Vitis HLS runner, scripted replay)
//   - advisor/directives/: pragma rendering and source instrumentation
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - ClusterModel: soft membership score of a projected vector
//   - KnowledgeView: one immutable KB snapshot (projection, models, frontiers)
//   - SynthesisAdapter: blocking synthesize call returning QoR or failure
//
// A recommendation session holds no shared state; callers may run sessions
// for different applications in parallel, one immutable snapshot each.
package advisor
