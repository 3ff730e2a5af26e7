// Package middleware groups the Fiber middleware mounted by the start command.
//
//   - rayid tags every request with an id, echoed in the X-Ray-ID header and
//     attached to log lines through logger.WithRayID.
//   - auth rejects requests without the configured X-API-Key.
//
// Swagger is registered before auth so the docs stay public.
package middleware
