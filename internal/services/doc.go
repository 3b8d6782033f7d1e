// Package services defines the shared error taxonomy for tunecast subsystems.
//
// Sentinel errors classify failures so the HTTP layer can map them to status
// codes without inspecting message text: validation problems become 400s,
// missing entities 404s, and tool or pipeline failures 500s.
package services
