// Package process provides OS-level helpers for supervising the external
// browser process: tree kills, liveness probes, and marker-based sweeps.
//
// Every browser launch is tagged with a private environment variable. The
// sweep functions locate processes by that marker, so forced teardown can
// distinguish this library's processes from unrelated ones that happen to
// share the executable name, and can collect orphans left behind by a
// crashed launch.
package process

// KillMarked force-kills every process tagged with the given environment
// marker. Best-effort: platforms without process enumeration support fall
// back to doing nothing, and the process-group kill covers the common case.
func KillMarked(key, value string) {
	for _, pid := range FindMarked(key, value) {
		KillProcessGroup(pid)
	}
}
