// Package api exposes knight's tour sessions over a JSON REST API.
//
// Endpoints:
//
// Tours:
//   - POST /api/tours - Create a tour ({"config_id", "seed", "start": {"row", "col"}})
//   - GET /api/tours - List tours (?sort=created|accessed&order=asc|desc&limit=N&status=)
//   - GET /api/tours/{id} - Get a tour with its board configuration
//   - DELETE /api/tours/{id} - Delete a tour
//
// Tour Operations:
//   - GET /api/tours/{id}/state - Current labels, position and status
//   - GET /api/tours/{id}/board - Text rendering of the board
//   - GET /api/tours/{id}/candidates - Onward moves with their accessibility
//   - POST /api/tours/{id}/step - One Warnsdorff move
//   - POST /api/tours/{id}/bulk-step - Up to n moves ({"n": 10, "reset": false})
//   - POST /api/tours/{id}/run - Drive the tour until it completes or gets stuck
//   - POST /api/tours/{id}/reset - Clear the board back to the start square
//   - GET /api/tours/{id}/history - Paginated move history (?page=&limit=&order=)
//
// Configuration:
//   - GET /api/configs - List board configurations
//   - POST /api/configs - Save a board configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket stream of state updates and tour events
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the service
// error: 404 for unknown tours or configs, 409 when stepping a finished tour,
// 400 for invalid input and 500 otherwise.
//
//	{"error": "session not found"}
package api
