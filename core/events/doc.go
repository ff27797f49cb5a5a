// Package events defines the typed orchestration event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - assistant_response.*
//   - tool_call.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Final: terminal state for the current reply id; exactly one is emitted
//     per reply that is not cancelled.
//
// user_input events
//
//   - UserTurnReceived (user_input.turn_received): inbound response-required
//     event with the caller's latest utterance.
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed reply
//     text segment for a reply id.
//   - AssistantResponseFinal (assistant_response.final): reply text stream is
//     complete for a reply id.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): workflow execution started.
//   - ToolCallCompleted (tool_call.completed): workflow execution completed.
//   - ToolCallFailed (tool_call.failed): workflow execution failed or was
//     rejected before execution.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a reply started streaming.
//   - TurnCompleted (turn_state.completed): the reply finished and its
//     terminal fragment was sent.
//   - TurnFailed (turn_state.failed): the reply terminated on an error.
//   - TurnCancelled (turn_state.cancelled): the reply was abandoned because
//     the caller barged in.
package events
