//go:build !windows

package winreg

// OpenSystem returns the host registry. Non-Windows hosts have none.
func OpenSystem() (Store, error) {
	return nil, ErrUnsupported
}
