package recording

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/gpu"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one recording method on CommandList.
type CommandType uint8

const (
	// Clears and draws
	CmdClear       CommandType = iota // Clear the bound framebuffer
	CmdDraw                           // Non-indexed draw
	CmdDrawIndexed                    // Indexed draw

	// Bindings
	CmdBindPipeline    // Bind a render pipeline
	CmdBindVertexArray // Bind vertex and index buffers
	CmdBindTexture     // Bind a texture to a slot
	CmdBindFramebuffer // Bind the framebuffer subsequent passes render to

	// Fixed-function state
	CmdSetViewport // Set the viewport rectangle
	CmdSetScissor  // Set the scissor rectangle

	// Synchronization and passes
	CmdResourceBarrier  // Transition a resource between access modes
	CmdBeginRenderPass  // Begin a render pass on a framebuffer
	CmdEndRenderPass    // End the current render pass
	CmdBlitToScreen     // Blit a framebuffer to the presentation target
	commandTypeSentinel // keep last
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdClear:           "Clear",
	CmdDraw:            "Draw",
	CmdDrawIndexed:     "DrawIndexed",
	CmdBindPipeline:    "BindPipeline",
	CmdBindVertexArray: "BindVertexArray",
	CmdBindTexture:     "BindTexture",
	CmdBindFramebuffer: "BindFramebuffer",
	CmdSetViewport:     "SetViewport",
	CmdSetScissor:      "SetScissor",
	CmdResourceBarrier: "ResourceBarrier",
	CmdBeginRenderPass: "BeginRenderPass",
	CmdEndRenderPass:   "EndRenderPass",
	CmdBlitToScreen:    "BlitFramebufferToScreen",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) && commandTypeNames[c] != "" {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// CommandTypes returns every known command type in declaration order.
func CommandTypes() []CommandType {
	types := make([]CommandType, 0, int(commandTypeSentinel))
	for c := CmdClear; c < commandTypeSentinel; c++ {
		types = append(types, c)
	}
	return types
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// ClearFlags selects which attachments a Clear touches.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// --------------------------------------------------------------------------
// Clears and draws
// --------------------------------------------------------------------------

// ClearCommand clears the attachments of the bound framebuffer.
type ClearCommand struct {
	Flags   ClearFlags
	Color   gputypes.Color
	Depth   float32
	Stencil uint32
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// DrawCommand issues a non-indexed draw.
type DrawCommand struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// DrawIndexedCommand issues an indexed draw.
type DrawIndexedCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Type implements Command.
func (DrawIndexedCommand) Type() CommandType { return CmdDrawIndexed }

// --------------------------------------------------------------------------
// Bindings
// --------------------------------------------------------------------------

// BindPipelineCommand binds a render pipeline.
type BindPipelineCommand struct {
	Pipeline gpu.Pipeline
}

// Type implements Command.
func (BindPipelineCommand) Type() CommandType { return CmdBindPipeline }

// BindVertexArrayCommand binds the vertex and index buffers of a draw.
type BindVertexArrayCommand struct {
	VertexArray gpu.VertexArray
}

// Type implements Command.
func (BindVertexArrayCommand) Type() CommandType { return CmdBindVertexArray }

// BindTextureCommand binds a texture to a shader slot.
type BindTextureCommand struct {
	Slot    uint32
	Texture gpu.Texture
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// BindFramebufferCommand selects the framebuffer for clears and render passes.
// A nil framebuffer selects the device default target.
type BindFramebufferCommand struct {
	Framebuffer gpu.Framebuffer
}

// Type implements Command.
func (BindFramebufferCommand) Type() CommandType { return CmdBindFramebuffer }

// --------------------------------------------------------------------------
// Fixed-function state
// --------------------------------------------------------------------------

// Viewport is a viewport rectangle with a depth range.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// SetViewportCommand sets the viewport.
type SetViewportCommand struct {
	Viewport Viewport
}

// Type implements Command.
func (SetViewportCommand) Type() CommandType { return CmdSetViewport }

// SetScissorCommand sets the scissor rectangle.
type SetScissorCommand struct {
	X, Y          uint32
	Width, Height uint32
}

// Type implements Command.
func (SetScissorCommand) Type() CommandType { return CmdSetScissor }

// --------------------------------------------------------------------------
// Synchronization and passes
// --------------------------------------------------------------------------

// ResourceBarrierCommand transitions a texture or a buffer between access modes.
// Exactly one of Texture and Buffer is expected to be set.
type ResourceBarrierCommand struct {
	Texture gpu.Texture
	Buffer  gpu.Buffer
	Before  gpu.Access
	After   gpu.Access
}

// Type implements Command.
func (ResourceBarrierCommand) Type() CommandType { return CmdResourceBarrier }

// BeginRenderPassCommand begins a render pass on a framebuffer.
// A nil Framebuffer uses the one selected by the last BindFramebuffer.
type BeginRenderPassCommand struct {
	Label       string
	Framebuffer gpu.Framebuffer
	LoadOp      gputypes.LoadOp
	StoreOp     gputypes.StoreOp
	ClearColor  gputypes.Color
	ClearDepth  float32
}

// Type implements Command.
func (BeginRenderPassCommand) Type() CommandType { return CmdBeginRenderPass }

// EndRenderPassCommand ends the current render pass.
type EndRenderPassCommand struct{}

// Type implements Command.
func (EndRenderPassCommand) Type() CommandType { return CmdEndRenderPass }

// BlitToScreenCommand copies the color attachment of a framebuffer to the
// presentation target of the device.
type BlitToScreenCommand struct {
	Framebuffer   gpu.Framebuffer
	Width, Height uint32
}

// Type implements Command.
func (BlitToScreenCommand) Type() CommandType { return CmdBlitToScreen }
