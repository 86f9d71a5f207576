package scheduler

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another daemon process with the same
// executable name is alive.
var ErrAlreadyRunning = errors.New("another scheduler instance is running")

// ensureSingleInstance fails if a process with this executable's name,
// other than this one, is running.
func ensureSingleInstance() error {
	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	self, err := ps.FindProcess(thisProcessID)
	if err != nil {
		return fmt.Errorf("find own process: %w", err)
	}

	if self == nil {
		return nil
	}

	if others := findOtherInstances(processList, thisProcessID, self.Executable()); len(others) > 0 {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, others[0])
	}

	return nil
}

// findOtherInstances returns the IDs of processes named executable, except thisProcessID.
func findOtherInstances(processList []ps.Process, thisProcessID int, executable string) []int {
	var result []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != executable {
			continue
		}

		result = append(result, process.Pid())
	}

	return result
}
