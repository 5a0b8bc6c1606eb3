package recording

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned by Playback for a command type it cannot
// dispatch. New command kinds must be added to Player and Playback together.
var ErrUnknownCommand = errors.New("recording: unknown command")

// Player receives recorded commands during playback.
// Devices implement Player to give commands meaning; every method maps to
// exactly one CommandType.
type Player interface {
	Clear(ClearCommand) error
	Draw(DrawCommand) error
	DrawIndexed(DrawIndexedCommand) error
	BindPipeline(BindPipelineCommand) error
	BindVertexArray(BindVertexArrayCommand) error
	BindTexture(BindTextureCommand) error
	BindFramebuffer(BindFramebufferCommand) error
	SetViewport(SetViewportCommand) error
	SetScissor(SetScissorCommand) error
	ResourceBarrier(ResourceBarrierCommand) error
	BeginRenderPass(BeginRenderPassCommand) error
	EndRenderPass(EndRenderPassCommand) error
	BlitToScreen(BlitToScreenCommand) error
}

// Playback replays a closed list to the player, in recording order.
// It stops at the first error and reports the failing command index.
func Playback(l *CommandList, p Player) error {
	cmds, err := l.snapshot()
	if err != nil {
		return fmt.Errorf("playback %q: %w", l.label, err)
	}
	for i, cmd := range cmds {
		if err := dispatch(p, cmd); err != nil {
			return fmt.Errorf("playback %q: command %d (%s): %w", l.label, i, typeOf(cmd), err)
		}
	}
	return nil
}

func typeOf(cmd Command) string {
	if cmd == nil {
		return "nil"
	}
	return cmd.Type().String()
}

func dispatch(p Player, cmd Command) error {
	switch c := cmd.(type) {
	case ClearCommand:
		return p.Clear(c)
	case DrawCommand:
		return p.Draw(c)
	case DrawIndexedCommand:
		return p.DrawIndexed(c)
	case BindPipelineCommand:
		return p.BindPipeline(c)
	case BindVertexArrayCommand:
		return p.BindVertexArray(c)
	case BindTextureCommand:
		return p.BindTexture(c)
	case BindFramebufferCommand:
		return p.BindFramebuffer(c)
	case SetViewportCommand:
		return p.SetViewport(c)
	case SetScissorCommand:
		return p.SetScissor(c)
	case ResourceBarrierCommand:
		return p.ResourceBarrier(c)
	case BeginRenderPassCommand:
		return p.BeginRenderPass(c)
	case EndRenderPassCommand:
		return p.EndRenderPass(c)
	case BlitToScreenCommand:
		return p.BlitToScreen(c)
	default:
		return ErrUnknownCommand
	}
}
