// Package server exposes lineage exploration over HTTP.
//
// Each uploaded report becomes a session. A session stores the report and
// the interaction state; every request rebuilds a controller from the
// session, applies one event, and writes the new state back. Requests for
// the same session are serialized.
//
// # Routes
//
//	POST   /api/sessions                              upload a report
//	GET    /api/sessions/{id}/graph                   current graph
//	GET    /api/sessions/{id}/graph.{format}          rendered graph (json, dot, svg, png, pdf)
//	POST   /api/sessions/{id}/nodes/{node}/click      click a node
//	PUT    /api/sessions/{id}/nodes/{node}/position   move a node
//	GET    /api/sessions/{id}/nodes/{node}/detail     node detail
//	POST   /api/sessions/{id}/positions/reset         drop all moved positions
//	PUT    /api/sessions/{id}/view                    set view mode
//	PUT    /api/sessions/{id}/filter                  set risk filter
//	DELETE /api/sessions/{id}                         end a session
//	GET    /healthz                                   liveness
//
// Errors are JSON objects of the form {"error": {"code": ..., "message": ...}}
// where code is one of the pkg/errors codes.
package server
