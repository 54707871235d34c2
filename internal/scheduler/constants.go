package scheduler

// Log messages
const (
	LogMsgSchedulerStopping        = "Stopping scheduler"
	LogMsgSchedulerStopped         = "Scheduler stopped"
	LogMsgSchedulerShutdownTimeout = "Scheduler shutdown timed out, some callbacks may still be running"
)

const (
	PanicMsgNonPositiveInterval = "scheduler: repeating interval must be positive"
)
