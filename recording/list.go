package recording

import (
	"errors"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/gpu"
)

// Command list errors.
var (
	// ErrAlreadyRecording is returned by Begin on a list that is recording.
	ErrAlreadyRecording = errors.New("recording: list is already recording")

	// ErrNotRecording is returned by End on a list that is not recording.
	ErrNotRecording = errors.New("recording: list is not recording")

	// ErrListClosed is returned by Begin on a closed list; call Reset instead.
	ErrListClosed = errors.New("recording: list is closed, reset it before recording")

	// ErrNotClosed is returned when a list that is still recording, or was
	// never begun, is handed to a device for execution.
	ErrNotClosed = errors.New("recording: list must be closed before execution")
)

// State is the lifecycle state of a CommandList.
type State uint8

const (
	StateUninitialized State = iota
	StateRecording
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateRecording:
		return "Recording"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// CommandList is an append-only sequence of recorded GPU commands.
//
// CommandList is safe for concurrent use; see the package documentation.
// It must not be copied after first use.
type CommandList struct {
	mu         sync.Mutex
	label      string
	state      State
	commands   []Command
	dropped    int
	executions int
}

// NewCommandList creates an uninitialized command list.
func NewCommandList(label string) *CommandList {
	return &CommandList{
		label:    label,
		commands: make([]Command, 0, 32),
	}
}

// Label returns the debug label of the list.
func (l *CommandList) Label() string { return l.label }

// Begin starts recording. It is valid only on a list that was never begun.
func (l *CommandList) Begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateRecording:
		return ErrAlreadyRecording
	case StateClosed:
		return ErrListClosed
	}
	l.state = StateRecording
	return nil
}

// End closes the list for execution.
func (l *CommandList) End() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRecording {
		return ErrNotRecording
	}
	l.state = StateClosed
	return nil
}

// Reset discards all recorded commands and puts the list back into the
// Recording state. The execution counter is kept.
func (l *CommandList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.commands)
	l.commands = l.commands[:0]
	l.dropped = 0
	l.state = StateRecording
}

// State returns the current lifecycle state.
func (l *CommandList) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsRecording reports whether commands are currently accepted.
func (l *CommandList) IsRecording() bool {
	return l.State() == StateRecording
}

// IsEmpty reports whether the list holds no commands.
func (l *CommandList) IsEmpty() bool {
	return l.CommandCount() == 0
}

// CommandCount returns the number of recorded commands.
func (l *CommandList) CommandCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.commands)
}

// Commands returns a copy of the recorded command sequence.
func (l *CommandList) Commands() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Command, len(l.commands))
	copy(out, l.commands)
	return out
}

// Dropped returns how many commands were issued outside the Recording state
// since the last Reset.
func (l *CommandList) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// ExecutionCount returns how many times a device has played the list back.
func (l *CommandList) ExecutionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.executions
}

// snapshot returns the commands of a closed list and marks one execution.
func (l *CommandList) snapshot() ([]Command, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateClosed {
		return nil, ErrNotClosed
	}
	l.executions++
	out := make([]Command, len(l.commands))
	copy(out, l.commands)
	return out, nil
}

// Append records an arbitrary command. The typed helpers below are
// preferred; Append exists for command forwarding between lists.
func (l *CommandList) Append(cmd Command) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRecording || cmd == nil {
		l.dropped++
		return
	}
	l.commands = append(l.commands, cmd)
}

// Clear records a clear of the bound framebuffer.
func (l *CommandList) Clear(flags ClearFlags, color gputypes.Color, depth float32, stencil uint32) {
	l.Append(ClearCommand{Flags: flags, Color: color, Depth: depth, Stencil: stencil})
}

// Draw records a non-indexed draw.
func (l *CommandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	l.Append(DrawCommand{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

// DrawIndexed records an indexed draw.
func (l *CommandList) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	l.Append(DrawIndexedCommand{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

// BindPipeline records a pipeline bind.
func (l *CommandList) BindPipeline(p gpu.Pipeline) {
	l.Append(BindPipelineCommand{Pipeline: p})
}

// BindVertexArray records a vertex/index buffer bind.
func (l *CommandList) BindVertexArray(va gpu.VertexArray) {
	l.Append(BindVertexArrayCommand{VertexArray: va})
}

// BindTexture records a texture bind to the given slot.
func (l *CommandList) BindTexture(slot uint32, tex gpu.Texture) {
	l.Append(BindTextureCommand{Slot: slot, Texture: tex})
}

// BindFramebuffer records a framebuffer selection.
func (l *CommandList) BindFramebuffer(fb gpu.Framebuffer) {
	l.Append(BindFramebufferCommand{Framebuffer: fb})
}

// SetViewport records a viewport change.
func (l *CommandList) SetViewport(vp Viewport) {
	l.Append(SetViewportCommand{Viewport: vp})
}

// SetScissor records a scissor rectangle change.
func (l *CommandList) SetScissor(x, y, width, height uint32) {
	l.Append(SetScissorCommand{X: x, Y: y, Width: width, Height: height})
}

// ResourceBarrier records a resource transition.
func (l *CommandList) ResourceBarrier(b ResourceBarrierCommand) {
	l.Append(b)
}

// BeginRenderPass records the start of a render pass.
func (l *CommandList) BeginRenderPass(desc BeginRenderPassCommand) {
	l.Append(desc)
}

// EndRenderPass records the end of the current render pass.
func (l *CommandList) EndRenderPass() {
	l.Append(EndRenderPassCommand{})
}

// BlitFramebufferToScreen records a copy of fb's color attachment to the
// presentation target.
func (l *CommandList) BlitFramebufferToScreen(fb gpu.Framebuffer, width, height uint32) {
	l.Append(BlitToScreenCommand{Framebuffer: fb, Width: width, Height: height})
}
