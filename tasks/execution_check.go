package tasks

import "os/exec"

// BinaryMissingCheck allows a task to run only when Binary is not on the PATH.
type BinaryMissingCheck struct {
	Binary   string
	LookPath func(string) (string, error)
}

func NewBinaryMissingCheck(binary string) *BinaryMissingCheck {
	return &BinaryMissingCheck{Binary: binary, LookPath: exec.LookPath}
}

func (chk BinaryMissingCheck) CanExecute() bool {
	_, err := chk.LookPath(chk.Binary)
	return err != nil
}
