package history

const (
	LogMsgDecodeFailed = "Failed to decode settlement for history"
)
