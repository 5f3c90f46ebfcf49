package core

// Frame is a wire-ready payload, already marshaled.
type Frame []byte

// SignalConnection abstracts a participant's messaging transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks; on a full outbound queue it returns an error
// and the frame is lost (best-effort delivery).
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
