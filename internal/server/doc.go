// Package server exposes exploration views over HTTP and WebSocket.
//
// A browser canvas opens a view with POST /api/views, renders the returned
// scene, and reports gestures back. Each view lives in memory until it is
// deleted, idles out, or the server stops; nothing is persisted.
//
//	GET    /healthz
//	GET    /api/version
//	POST   /api/views
//	GET    /api/views/{viewID}
//	PUT    /api/views/{viewID}/layout
//	POST   /api/views/{viewID}/nodes/{nodeID}/expand
//	POST   /api/views/{viewID}/gestures
//	GET    /api/views/{viewID}/dot
//	GET    /api/views/{viewID}/svg
//	GET    /api/views/{viewID}/ws
//	DELETE /api/views/{viewID}
//
// Errors are JSON objects of the form {"error": {"code", "message"}} where
// message is safe to show to users.
package server
