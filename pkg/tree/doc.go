// Package tree models the sponsor/placement hierarchy returned by the
// Sagenex backend.
//
// # Wire Format
//
// The backend's team endpoint answers with a nested tree and an optional
// parent reference:
//
//	{
//	  "tree": {
//	    "userId": "SGX1001", "fullName": "Asha Rao", "packageUSD": 500,
//	    "isSplitSponsor": false, "originalSponsorId": null,
//	    "children": [ ... ]
//	  },
//	  "parent": { "userId": "COMPANY-ROOT", "fullName": "Sagenex" }
//	}
//
// [Decode] reads that shape into typed structs and [Response.Validate] checks
// the invariants the layout relies on: non-empty ids, non-negative package
// values and globally unique ids.
//
// # Traversal
//
// [Walk] visits nodes depth-first in pre-order and reports each node's depth
// and placement parent. [Index], [Find], [Count] and [Depth] are built on it.
//
// Nodes are plain values; nothing in this package mutates a tree it is given.
package tree
