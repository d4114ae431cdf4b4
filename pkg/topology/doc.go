// Package topology defines the network topology data model rendered by the
// chart: nodes typed by K5 network resource kind, links between them, and
// the fixed visual style lookup per node type.
//
// # Dataset Format
//
// Datasets use a simple node-link format, in JSON or YAML:
//
//	{
//	  "nodes": [{"id": "r1", "node_type": "ROUTER"}, {"id": "p1", "node_type": "PORT"}],
//	  "links": [{"source": "r1", "target": "p1"}]
//	}
//
// Unknown fields on a node are collected into Meta, so K5 resource
// attributes (status, cidr, tenant_id, ...) survive a load/save cycle.
//
// # Node Types
//
//	PORT, ROUTER, NETWORK, NC (network connector), NCEP (connector
//	endpoint), NCPOOL (connector pool)
//
// Any other value is rendered with the default style.
//
// # Validation
//
// Rendering never validates: dangling links are skipped and unknown types
// fall back to the default style. [Dataset.Validate] is an explicit check
// for callers that want strict input.
package topology
