package cache

import "fmt"

func TerminalJobKey(jobID int64) string {
	return fmt.Sprintf("job:%d", jobID)
}

func RateLimitKey(identity string) string {
	return fmt.Sprintf("ratelimit:%s", identity)
}
