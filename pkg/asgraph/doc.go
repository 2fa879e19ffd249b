// Package asgraph builds AS adjacency graphs from observed AS-paths and
// infers business relationships and topological roles from them.
//
// A build runs in fixed stages over one (year, family) corpus:
//
//  1. Builder.Add normalizes each announcement and folds its adjacencies
//     into the neighbor graph.
//  2. Builder.Build seals the builder, finds the highest-degree AS of
//     every path and records transit observations toward it.
//  3. Every adjacent pair of every path is classified as customer,
//     provider, peer or sibling from those observations.
//  4. Every vertex gets one role from its customer and peer counts.
package asgraph
