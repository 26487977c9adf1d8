package recording

import (
	"github.com/gogpu/copyenc/backend"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Transfer commands
	CmdCopyBufferToBuffer  CommandType = iota // Copy bytes between buffers
	CmdCopyBufferToTexture                    // Upload a buffer region into a texture
	CmdCopyTextureToBuffer                    // Read back a texture region into a buffer
	CmdFillBuffer                             // Fill a buffer range with a byte

	// Initialization commands
	CmdClearTexture // Zero a texture slice and mark it cleared
	CmdMarkCleared  // Mark a slice cleared without touching it
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdCopyBufferToBuffer:  "CopyBufferToBuffer",
	CmdCopyBufferToTexture: "CopyBufferToTexture",
	CmdCopyTextureToBuffer: "CopyTextureToBuffer",
	CmdFillBuffer:          "FillBuffer",
	CmdClearTexture:        "ClearTexture",
	CmdMarkCleared:         "MarkCleared",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// SliceMarker tracks which texture subresources hold defined contents.
type SliceMarker interface {
	SetPreviouslyCleared(level, slice uint32, cleared bool)
}

// CopyBufferToBufferCommand copies Size bytes from Src to Dst.
type CopyBufferToBufferCommand struct {
	Src       backend.Buffer
	SrcOffset uint64
	Dst       backend.Buffer
	DstOffset uint64
	Size      uint64
}

// Type implements Command.
func (CopyBufferToBufferCommand) Type() CommandType { return CmdCopyBufferToBuffer }

// CopyBufferToTextureCommand uploads one buffer region.
type CopyBufferToTextureCommand struct {
	Copy backend.BufferTextureCopy
}

// Type implements Command.
func (CopyBufferToTextureCommand) Type() CommandType { return CmdCopyBufferToTexture }

// CopyTextureToBufferCommand reads back one texture region.
type CopyTextureToBufferCommand struct {
	Copy backend.BufferTextureCopy
}

// Type implements Command.
func (CopyTextureToBufferCommand) Type() CommandType { return CmdCopyTextureToBuffer }

// FillBufferCommand sets Size bytes of Dst starting at Offset to Value.
type FillBufferCommand struct {
	Dst    backend.Buffer
	Offset uint64
	Size   uint64
	Value  byte
}

// Type implements Command.
func (FillBufferCommand) Type() CommandType { return CmdFillBuffer }

// ClearTextureCommand zeroes one slice of a mip level and marks it cleared
// on Target once played back.
type ClearTextureCommand struct {
	Texture backend.Texture
	Target  SliceMarker
	Level   uint32
	Slice   uint32
}

// Type implements Command.
func (ClearTextureCommand) Type() CommandType { return CmdClearTexture }

// MarkClearedCommand marks a slice cleared because a copy is about to
// overwrite all of it.
type MarkClearedCommand struct {
	Target SliceMarker
	Level  uint32
	Slice  uint32
}

// Type implements Command.
func (MarkClearedCommand) Type() CommandType { return CmdMarkCleared }
