// Package config provides centralized configuration and constants for the instant-translator application.
package config

import (
	"runtime"
	"time"
)

// Engine cache
const (
	// DefaultCacheCapacity bounds how many engines (each holding a loaded
	// model) stay resident at once.
	DefaultCacheCapacity = 3
)

// Default languages
const (
	DefaultSourceLang = "en"
	DefaultTargetLang = "es"
)

// Global resource limits
const (
	// MaxConcurrentCPUOperations limits total concurrent local engine
	// subprocesses (model checks, installs, translations).
	MaxConcurrentCPUOperations = 4
)

// Retry settings for package index updates
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelayBase = time.Second
)

// Exec command timeouts (for os/exec calls)
const (
	ExecTimeoutPython  = 2 * time.Minute  // Check, translate, uninstall
	ExecTimeoutInstall = 10 * time.Minute // Package index update and model download
)

// Model manager timeouts
const (
	ModelListTimeout = 30 * time.Second
)

// DynamicWorkerCount returns the optimal worker count based on task type and CPU cores.
func DynamicWorkerCount(taskType string) int {
	cpus := runtime.NumCPU()

	switch taskType {
	case "model-download":
		// Network bound, but each install also unpacks a model
		return minInt(cpus, 4)
	case "translation-local":
		// Bounded by the CPU limiter anyway
		return minInt(cpus, MaxConcurrentCPUOperations)
	default:
		return cpus
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
