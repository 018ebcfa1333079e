// Package toolx turns typed Go functions into tools a tool-calling host can
// list and invoke.
//
// A handler receives decoded, validated arguments and returns a Result. The
// host only ever sees the Envelope built from it:
//
//	{"success": true, "message_id": "wamid..."}
//	{"success": false, "error": "Maximum 3 buttons allowed", "error_code": "MSGX_INVALID_INTERACTIVE"}
//
// Tools are collected in a ToolRegistry, which can also describe them in the
// OpenAI and Anthropic tool formats.
package toolx
