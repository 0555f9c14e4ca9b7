package toolchain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/1552980358/kotlin-native/proc"
)

// Provider exposes the locally installed toolchain to the resolver. It is an
// interface so the resolver and its dependents are testable without a real
// Xcode installation.
type Provider interface {
	// ToolchainRoot returns the root directory of the default toolchain.
	ToolchainRoot() (string, error)
	// SDKPath returns the filesystem path of the named SDK.
	SDKPath(sdkName string) (string, error)
	// SimulatorRuntimeRoot returns the runtime root of the newest installed
	// simulator runtime for the given platform key (e.g. "iOS"). The second
	// return is false when the installed toolchain exposes no runtime
	// metadata for that platform.
	SimulatorRuntimeRoot(platformKey string) (string, bool, error)
	// HostOSVersion returns the host OS product version (e.g. "10.14.4").
	HostOSVersion() (string, error)
}

// xcodeProvider discovers toolchain facts by shelling out to xcrun and
// friends via the process runner.
type xcodeProvider struct {
	proc proc.Runner
}

// NewXcodeProvider returns a Provider backed by the installed Xcode tools.
func NewXcodeProvider(runner proc.Runner) (Provider, error) {
	if runner == nil {
		return nil, fmt.Errorf("process runner is required")
	}
	return &xcodeProvider{proc: runner}, nil
}

func (p *xcodeProvider) query(name string, args ...string) (string, error) {
	res, err := p.proc.Run(name, args, "", nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", proc.NewToolFailure(name, args, res)
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (p *xcodeProvider) ToolchainRoot() (string, error) {
	out, err := p.query("xcrun", "--find", "swiftc")
	if err != nil {
		return "", fmt.Errorf("failed to locate toolchain: %w", err)
	}
	// swiftc lives at <toolchain>/usr/bin/swiftc.
	return strings.TrimSuffix(out, "/usr/bin/swiftc"), nil
}

func (p *xcodeProvider) SDKPath(sdkName string) (string, error) {
	out, err := p.query("xcrun", "--sdk", sdkName, "--show-sdk-path")
	if err != nil {
		return "", fmt.Errorf("failed to resolve sdk %q: %w", sdkName, err)
	}
	return out, nil
}

func (p *xcodeProvider) HostOSVersion() (string, error) {
	out, err := p.query("sw_vers", "-productVersion")
	if err != nil {
		return "", fmt.Errorf("failed to read host OS version: %w", err)
	}
	return out, nil
}

// simctlRuntimes mirrors the subset of `simctl list runtimes -j` we consume.
type simctlRuntimes struct {
	Runtimes []struct {
		Platform    string `json:"platform"`
		RuntimeRoot string `json:"runtimeRoot"`
		IsAvailable bool   `json:"isAvailable"`
	} `json:"runtimes"`
}

func (p *xcodeProvider) SimulatorRuntimeRoot(platformKey string) (string, bool, error) {
	out, err := p.query("xcrun", "simctl", "list", "runtimes", "-j")
	if err != nil {
		return "", false, fmt.Errorf("failed to list simulator runtimes: %w", err)
	}
	var listing simctlRuntimes
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		return "", false, fmt.Errorf("failed to parse simulator runtime listing: %w", err)
	}
	// Runtimes are listed oldest first; keep the last available match.
	root := ""
	for _, rt := range listing.Runtimes {
		if rt.IsAvailable && strings.EqualFold(rt.Platform, platformKey) && rt.RuntimeRoot != "" {
			root = rt.RuntimeRoot
		}
	}
	if root == "" {
		return "", false, nil
	}
	return root, true, nil
}
