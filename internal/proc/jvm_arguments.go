package proc

import "strings"

var aggressiveFlags = []string{
	"-XX:+UseG1GC",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:MaxGCPauseMillis=50",
	"-XX:+DisableExplicitGC",
	"-XX:TargetSurvivorRatio=90",
	"-XX:G1NewSizePercent=50",
	"-XX:G1MaxNewSizePercent=80",
	"-XX:InitiatingHeapOccupancyPercent=10",
	"-XX:G1MixedGCLiveThresholdPercent=50",
	"-XX:+AggressiveOpts",
}

/**
 * JVM launch arguments builder
 * @property {string} InitialMemory - -Xms value, default "1G"
 * @property {string} MaxMemory - -Xmx value, default "1G"
 * @property {bool} Aggressive - Append the G1 tuning flag set
 */
type JVMArguments struct {
	InitialMemory string `json:"initial_memory"`
	MaxMemory     string `json:"max_memory"`
	Aggressive    bool   `json:"aggressive"`
}

func NewJVMArguments() *JVMArguments {
	return &JVMArguments{InitialMemory: "1G", MaxMemory: "1G"}
}

func (a *JVMArguments) WithInitialMemory(mem string) *JVMArguments {
	a.InitialMemory = mem
	return a
}

func (a *JVMArguments) WithMaxMemory(mem string) *JVMArguments {
	a.MaxMemory = mem
	return a
}

func (a *JVMArguments) WithAggressive(on bool) *JVMArguments {
	a.Aggressive = on
	return a
}

func (a *JVMArguments) Fields() []string {
	xms, xmx := a.InitialMemory, a.MaxMemory
	if xms == "" {
		xms = "1G"
	}
	if xmx == "" {
		xmx = "1G"
	}
	out := []string{"-Xms" + xms, "-Xmx" + xmx}
	if a.Aggressive {
		out = append(out, aggressiveFlags...)
	}
	return out
}

func (a *JVMArguments) String() string {
	return strings.Join(a.Fields(), " ")
}
