package toolchain

import (
	"errors"
	"fmt"
)

// Target identifies a (platform family, architecture, simulator-or-device)
// combination under test. The set of targets is closed; every mapping over
// targets in this package switches exhaustively and treats anything else as
// a configuration error.
type Target string

const (
	MacosX64           Target = "macos_x64"
	MacosArm64         Target = "macos_arm64"
	IosArm64           Target = "ios_arm64"
	IosX64             Target = "ios_x64" // x86_64 simulator
	IosSimulatorArm64  Target = "ios_simulator_arm64"
	TvosArm64          Target = "tvos_arm64"
	TvosX64            Target = "tvos_x64" // x86_64 simulator
	TvosSimulatorArm64 Target = "tvos_simulator_arm64"
	WatchosArm64       Target = "watchos_arm64"
	WatchosX64         Target = "watchos_x64" // x86_64 simulator
	WatchosSimArm64    Target = "watchos_simulator_arm64"
)

// AllTargets lists every supported target, in a stable order.
var AllTargets = []Target{
	MacosX64,
	MacosArm64,
	IosArm64,
	IosX64,
	IosSimulatorArm64,
	TvosArm64,
	TvosX64,
	TvosSimulatorArm64,
	WatchosArm64,
	WatchosX64,
	WatchosSimArm64,
}

// Family is the platform family a target belongs to.
type Family string

const (
	FamilyMacos   Family = "macos"
	FamilyIos     Family = "ios"
	FamilyTvos    Family = "tvos"
	FamilyWatchos Family = "watchos"
)

// Family returns the platform family of the target.
// Unknown targets return an UnsupportedTargetError.
func (t Target) Family() (Family, error) {
	switch t {
	case MacosX64, MacosArm64:
		return FamilyMacos, nil
	case IosArm64, IosX64, IosSimulatorArm64:
		return FamilyIos, nil
	case TvosArm64, TvosX64, TvosSimulatorArm64:
		return FamilyTvos, nil
	case WatchosArm64, WatchosX64, WatchosSimArm64:
		return FamilyWatchos, nil
	default:
		return "", &UnsupportedTargetError{Target: t}
	}
}

// Simulator reports whether the target runs in a simulator rather than on
// device (or directly on the host, for macOS targets).
func (t Target) Simulator() (bool, error) {
	switch t {
	case IosX64, IosSimulatorArm64, TvosX64, TvosSimulatorArm64, WatchosX64, WatchosSimArm64:
		return true, nil
	case MacosX64, MacosArm64, IosArm64, TvosArm64, WatchosArm64:
		return false, nil
	default:
		return false, &UnsupportedTargetError{Target: t}
	}
}

// ParseTarget validates a target name from configuration.
func ParseTarget(name string) (Target, error) {
	t := Target(name)
	if _, err := t.Family(); err != nil {
		return "", err
	}
	return t, nil
}

// UnsupportedTargetError indicates a target outside the closed enumeration
// reached the resolver. This is a configuration bug, never defaulted over.
type UnsupportedTargetError struct {
	Target Target
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported target %q", string(e.Target))
}

// IsUnsupportedTarget checks if the error is or wraps an UnsupportedTargetError.
func IsUnsupportedTarget(err error) bool {
	var targetErr *UnsupportedTargetError
	return err != nil && errors.As(err, &targetErr)
}
