package worker

import "time"

// DefaultJobTimeout bounds a single job
const DefaultJobTimeout = 10 * time.Second

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// Log messages for worker pool operations
const (
	LogMsgWorkerJobFailed       = "Worker job failed"
	LogMsgWorkerJobPanicked     = "Worker job panicked"
	LogMsgWorkerPoolStopTimeout = "Worker pool stop timed out, queued jobs abandoned"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount      = 2
	TestQueueSize        = 10
	TestExpectedJobCount = 2
)
