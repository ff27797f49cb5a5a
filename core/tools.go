package orchestration

import "github.com/koscakluka/helpline-core/core/llms"

// schedulingTools declares the two actions the completion engine may request.
// The dispatcher routes them to the injected workflow providers.
func schedulingTools() []llms.Tool {
	return []llms.Tool{
		llms.NewTool(toolCheckAvailability,
			"Find the first available 30-minute technician slot in the next 7 days.",
			nil),
		llms.NewTool(toolCreateMeeting,
			"Finalize the booking. Only call this after checking availability, confirming the time with the caller, and verifying their email.",
			bookingArguments{}),
	}
}
