// Package vizutil holds small helpers shared by the chart components:
// axis tick calculation, a resize notification bus and random test data.
//
// The random helpers draw from a seeded [Kit] so generated datasets are
// reproducible; [Kit.RandomTopology] builds K5 style network topologies
// (routers, networks, ports and network connectors) for demos and tests.
package vizutil
