// Package recording provides thread-confined command lists for deferred GPU
// execution.
//
// A CommandList captures GPU commands as typed command structs instead of
// executing them. Lists are filled by pass callbacks, possibly on worker
// goroutines, and later drained by a device on the submission goroutine.
// No command executes itself: Playback dispatches every recorded command to a
// Player, which is where a device gives the command meaning.
//
// # Lifecycle
//
//	Uninitialized --Begin--> Recording --End--> Closed
//	Closed --(executed any number of times)--> Closed
//	Closed/Recording --Reset--> Recording
//
// Recording methods called outside the Recording state are dropped and
// counted; see CommandList.Dropped.
//
// # Example
//
//	list := recording.NewCommandList("main")
//	_ = list.Begin()
//	list.BindFramebuffer(fb)
//	list.Clear(recording.ClearAll, gputypes.Color{A: 1}, 1, 0)
//	list.BeginRenderPass(recording.BeginRenderPassCommand{LoadOp: gputypes.LoadOpLoad})
//	list.Draw(3, 1, 0, 0)
//	list.EndRenderPass()
//	_ = list.End()
//
//	err := device.ExecuteCommandList(list)
//
// # Thread Safety
//
// Appending and draining are guarded by a per-list mutex, so one goroutine
// may record while another inspects or plays the list back. Ordering between
// lists is the caller's responsibility: submit them in the intended order.
package recording
