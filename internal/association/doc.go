// Package association measures how reference features relate to lineament
// zones.
//
// Two kinds of reference data are supported:
//
//   - Point features (e.g. mineral deposits) are sampled against the zone
//     mask and distance fields, then aggregated into an enrichment index:
//     the share of features inside the zone divided by the zone's share of
//     the area.
//   - Line and polygon features (e.g. mapped faults) are buffered and
//     compared to the zone by area, giving precision, recall and F1.
//
// Both analyses can be repeated over lists of percentiles or buffer
// distances. Each list entry is computed independently and concurrently;
// results come back in input order and one failing entry never aborts its
// siblings.
//
// # Undefined Values
//
// Ratios whose denominator is zero are reported as nil pointers, never as 0,
// so "computed zero" and "no data" stay distinguishable in the output.
package association
