package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prompt = ">"

	// Response Codes
	OK       = "OK"
	ERROR    = "ERROR"
	FAIL     = "FAIL"
	SendOK   = "SEND OK"
	SendFail = "SEND FAIL"
	Ready    = "ready"
	Connect  = "CONNECT"

	// Station milestones reported while joining an access point
	WifiConnected = "WIFI CONNECTED"
	WifiGotIP     = "WIFI GOT IP"

	// URCs (Unsolicited Result Codes)
	UrcReceive        = "+IPD,"
	UrcClosed         = "CLOSED"
	UrcWifiDisconnect = "WIFI DISCONNECT"
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR, FAIL
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output, echoes
	TypePrompt                     // CIPSEND payload prompt
)

func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
