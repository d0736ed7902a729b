package packet

// ProtocolVersion is the tracker protocol revision exchanged in the
// handshake.
const ProtocolVersion = 1

// Client (tracker) opcodes.
const (
	C_OPCODE_HELLO   = 1 // [C version]
	C_OPCODE_SAMPLE  = 2 // [C detected][H x][H y], x and y in 1/65535 of the frame
	C_OPCODE_NO_HAND = 3
)

// Server opcodes.
const (
	S_OPCODE_WELCOME = 101 // [C version]
)

// CoordScale is the fixed-point scale of sample coordinates on the wire.
const CoordScale = 65535
