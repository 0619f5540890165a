//go:build windows

package probe

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// runAsElevator relaunches commands through the UAC prompt when the current
// token is not elevated.
type runAsElevator struct {
	powershell string
}

func platformElevator() Elevator {
	return &runAsElevator{
		powershell: resolveCommandPath("powershell", `C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`),
	}
}

func (e *runAsElevator) NeedsWrap() bool {
	return !IsElevated()
}

func (e *runAsElevator) Wrap(path string, args []string) (string, []string) {
	return e.powershell, RunAsArgs(path, args)
}

// IsElevated reports whether the process token is elevated.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
