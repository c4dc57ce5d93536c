// Package task contains the background scheduling runner that periodically
// promotes waiting tasks into free active slots.
package task
