//go:build !linux

package process

// FindMarked is unsupported without a /proc filesystem; the process-group
// kill is the only teardown mechanism on these platforms.
func FindMarked(key, value string) []int {
	return nil
}
