// Package io provides JSON import and export for layout requests, layout
// responses and diagrams.
//
// # Overview
//
// The CLI and the HTTP API exchange the same documents, so a request
// captured from the API can be replayed with the CLI and vice versa.
//
// # Request Format
//
//	{
//	  "models": [
//	    {"id": "m1", "entities": [
//	      {"id": "Dog", "kind": "class", "label": "Dog"},
//	      {"id": "Animal", "kind": "class"},
//	      {"id": "dog-animal", "kind": "generalization", "child": "Dog", "parent": "Animal"}
//	    ]}
//	  ],
//	  "diagram": {"id": "d1", "entities": [
//	    {"id": "v1", "kind": "node", "represented": "Dog",
//	     "position": {"x": 0, "y": 0, "width": 120, "height": 48}, "anchored": true}
//	  ]},
//	  "options": {"anchorMode": "merge-with-original-anchors", "allOutsiders": true}
//	}
//
// Entity kinds are "class", "class-profile", "relationship",
// "relationship-profile" and "generalization" for model entities, and
// "node", "relationship", "profile-edge" and "group" for diagram entities.
// The options object mirrors [pipeline.Options].
//
// # Response Format
//
//	{
//	  "changes": {
//	    "v1": {"entity": {...}, "isOutsider": false},
//	    "node-...": {"entity": {...}, "isOutsider": true}
//	  },
//	  "metrics": {"edgeCrossings": {"absoluteValue": 0, "relativeValue": 1}, ...},
//	  "stats": {"nodes": 2, "edges": 1, ...}
//	}
//
// Changes are keyed by diagram id. Entries with isOutsider set are new to
// the diagram and must be created; the others update existing entities.
//
// # Import
//
// Use [ImportRequest] to read a request from a file path, or [ReadRequest]
// to read from any io.Reader:
//
//	req, err := io.ImportRequest("layout.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [ExportResponse] to write a response to a file, or [WriteResponse] to
// write to any io.Writer. [ExportDiagram] writes a diagram after the changes
// were applied, in the same shape as the request's "diagram" object.
package io
