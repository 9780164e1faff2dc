package gateway

// Messenger is a remote chat surface the agent listens on. Start blocks
// until the gateway shuts down; Send is also used by the scheduler to
// push task output without an incoming message.
type Messenger interface {
	Start() error
	Send(chatID string, text string) error
	Stop() error
}
