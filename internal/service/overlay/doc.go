// Package overlay toggles the alert overlay browser sources of the compositor.
//
// Sources are handled one after another. Each is fully converged, settings
// first and mute second, before the next one starts, and a failed source
// never stops the rest. URLs seen for the first time are captured into the
// state store so a disabled source can always be restored.
package overlay
