package abc

import (
	"errors"
	"fmt"
)

// Kind identifies which mount file operation failed. Its value is the
// sentinel code returned across the wasm boundary.
type Kind int32

const (
	KindDeploy Kind = -1337
	KindExec   Kind = -2337
	KindOutput Kind = 404
)

func (k Kind) String() string {
	switch k {
	case KindDeploy:
		return "Deploy"
	case KindExec:
		return "Exec"
	case KindOutput:
		return "Out"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// File returns the mount name the kind refers to.
func (k Kind) File() string {
	switch k {
	case KindDeploy:
		return DeployFile
	case KindExec:
		return ExecuteFile
	case KindOutput:
		return OutputFile
	default:
		return ""
	}
}

// MountError reports a failed read or write of a mount file.
type MountError struct {
	Kind Kind
	Err  error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("mount-file %s (%s): %v", e.Kind.File(), e.Kind, e.Err)
}

func (e *MountError) Unwrap() error { return e.Err }

// Code returns the sentinel value for the failure.
func (e *MountError) Code() int32 { return int32(e.Kind) }

// KindOf returns the Kind of the first MountError in err's chain.
func KindOf(err error) (Kind, bool) {
	var me *MountError
	if errors.As(err, &me) {
		return me.Kind, true
	}
	return 0, false
}
