package recording

import (
	"testing"

	"github.com/gogpu/framegraph/gpu"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		ct   CommandType
		want string
	}{
		{CmdClear, "Clear"},
		{CmdDraw, "Draw"},
		{CmdDrawIndexed, "DrawIndexed"},
		{CmdBindPipeline, "BindPipeline"},
		{CmdBindVertexArray, "BindVertexArray"},
		{CmdBindTexture, "BindTexture"},
		{CmdBindFramebuffer, "BindFramebuffer"},
		{CmdSetViewport, "SetViewport"},
		{CmdSetScissor, "SetScissor"},
		{CmdResourceBarrier, "ResourceBarrier"},
		{CmdBeginRenderPass, "BeginRenderPass"},
		{CmdEndRenderPass, "EndRenderPass"},
		{CmdBlitToScreen, "BlitFramebufferToScreen"},
		{CommandType(254), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CommandType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommandInterface(t *testing.T) {
	commands := []Command{
		ClearCommand{Flags: ClearAll},
		DrawCommand{VertexCount: 3, InstanceCount: 1},
		DrawIndexedCommand{IndexCount: 6, InstanceCount: 1},
		BindPipelineCommand{},
		BindVertexArrayCommand{},
		BindTextureCommand{Slot: 1},
		BindFramebufferCommand{},
		SetViewportCommand{Viewport: Viewport{Width: 64, Height: 64, MaxDepth: 1}},
		SetScissorCommand{Width: 64, Height: 64},
		ResourceBarrierCommand{Before: gpu.AccessWrite, After: gpu.AccessRead},
		BeginRenderPassCommand{Label: "main"},
		EndRenderPassCommand{},
		BlitToScreenCommand{Width: 64, Height: 64},
	}

	types := CommandTypes()
	if len(types) != len(commands) {
		t.Fatalf("CommandTypes() has %d entries, test covers %d", len(types), len(commands))
	}
	for i, cmd := range commands {
		if cmd.Type() != types[i] {
			t.Errorf("command %d: Type() = %v, want %v", i, cmd.Type(), types[i])
		}
	}
}
