// Package source models the operational road graph exactly as the backing
// store delivers it: named nodes with a semantic role and a 2D position,
// and directed or bidirectional edges classified by width.
//
// The model is deliberately dumb. Nothing here plans, expands or validates
// connectivity shapes; that is the builder's job. What source guarantees is:
//
//   - Role table fidelity: the fourteen node roles (charger, load, unload,
//     their docking combinations, waiting, departure, waiting-departure,
//     parking, queue, normal, intersection) keep their wire ids 1..14 and
//     their expansion section (dockWaitUndock, waitPOI, noChanges, normal,
//     intersection).
//   - POI normalization: the store sometimes writes "no POI" as the string
//     "0", sometimes as the number 0, sometimes omits the field. After
//     decoding, the sentinel is always the string NoPOI ("0"); downstream
//     comparisons never see another spelling.
//   - Referential sanity: Validate reports edges whose endpoints are not in
//     the node map, way types outside 1..3, and non-positive edge ids.
//
// Wire format notes: node positions travel as two-element arrays, node types
// either as compound {id, nodeSection} records or as the bare "normal"
// marker, way types as the integers 1 (twoWay), 2 (narrowTwoWay), 3 (oneWay).
package source
