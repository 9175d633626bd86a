//go:build windows

package clean

import (
	"fmt"
	"syscall"
	"unsafe"
)

// ─── Shell32 Syscalls ────────────────────────────────────────────────────────

var (
	modShell32          = syscall.NewLazyDLL("shell32.dll")
	procEmptyRecycleBin = modShell32.NewProc("SHEmptyRecycleBinW")
	procQueryRecycleBin = modShell32.NewProc("SHQueryRecycleBinW")
)

const (
	sherbNoConfirmation = 0x00000001
	sherbNoProgressUI   = 0x00000002
	sherbNoSound        = 0x00000004
)

// shQueryRBInfo mirrors the Windows SHQUERYRBINFO struct.
// Go's natural alignment adds padding after cbSize on AMD64,
// matching the C struct layout on both 32-bit and 64-bit.
type shQueryRBInfo struct {
	cbSize      uint32
	i64Size     int64
	i64NumItems int64
}

type shellBin struct{}

// SystemBin returns the Windows Recycle Bin across all drives.
func SystemBin() Bin { return shellBin{} }

// Query uses SHQueryRecycleBinW over all drives.
func (shellBin) Query() (int64, int64, error) {
	var info shQueryRBInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procQueryRecycleBin.Call(
		0, // NULL = query all drives
		uintptr(unsafe.Pointer(&info)),
	)
	if ret != 0 {
		return 0, 0, fmt.Errorf("SHQueryRecycleBinW failed: HRESULT 0x%08x", uint32(ret))
	}
	return info.i64NumItems, info.i64Size, nil
}

// Empty uses SHEmptyRecycleBinW without confirmation, progress UI or sound.
func (shellBin) Empty() error {
	flags := uintptr(sherbNoConfirmation | sherbNoProgressUI | sherbNoSound)
	ret, _, _ := procEmptyRecycleBin.Call(0, 0, flags)

	hr := uint32(ret)
	// S_OK (0) = success, E_UNEXPECTED (0x8000FFFF) = bin already empty.
	if hr != 0 && hr != 0x8000FFFF {
		return fmt.Errorf("SHEmptyRecycleBinW failed: HRESULT 0x%08x", hr)
	}
	return nil
}
