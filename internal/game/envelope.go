package game

// ToLobby is a sentinel recipient: the transport layer turns it into a
// debounced lobby refresh instead of a direct send.
const ToLobby = "@lobby"

// Envelope is one {recipient, event} pair produced by a coordinator
// operation. The coordinator never touches the transport; it returns
// envelopes and the gateway fans them out.
type Envelope struct {
	To      string
	Event   string
	Payload any
}

func to(connID, event string, payload any) Envelope {
	return Envelope{To: connID, Event: event, Payload: payload}
}

func lobbyRefresh() Envelope { return Envelope{To: ToLobby, Event: ""} }
