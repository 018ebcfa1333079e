// Package logx provides levelled printf-style logging configured from the
// environment.
//
// Environment Variables:
//   - LOG_LEVEL: minimum level (TRACE, DEBUG, INFO, WARN, ERROR, OFF)
//   - LOG_FORMAT: console, cloudwatch or json
//   - LOG_COLOR: false disables colored level names
//   - LOG_CALLER: false hides file:line
//
// Output goes to stderr. When the tool server runs over MCP stdio, stdout
// carries protocol frames and must never receive log lines.
//
// Basic Usage:
//
//	logx.Info("Message sent to %s", to)
//	logx.Error("Failed to send message: %v", err)
//
// Format Examples:
//
//	Console:    [2025-06-08 18:57:52] [INFO] tools.go:64: Message sent to +1234567890
//	CloudWatch: [2025-06-08T18:57:52.000Z] [INFO] tools.go:64: Message sent to +1234567890
//	JSON:       {"caller":"tools.go:64","level":"INFO","message":"Message sent to +1234567890","timestamp":"2025-06-08T18:57:52Z"}
package logx
