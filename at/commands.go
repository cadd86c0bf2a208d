package at

import (
	"fmt"
	"strings"
)

// Commands understood by the ESP8266 AT firmware. They are written without
// the CRLF terminator; the session appends it.
const (
	CmdAt               = "AT"
	CmdRestore          = "AT+RESTORE"
	CmdReset            = "AT+RST"
	CmdStationMode      = "AT+CWMODE=1"
	CmdSingleConnection = "AT+CIPMUX=0"
)

// quoter escapes the characters the firmware treats specially inside quoted
// parameters.
var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `,`, `\,`)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// JoinAP builds the command that joins the access point ssid.
func JoinAP(ssid, password string) string {
	return "AT+CWJAP=" + quote(ssid) + "," + quote(password)
}

// StartTCP builds the command that opens a single TCP connection.
func StartTCP(host string, port int) string {
	return fmt.Sprintf(`AT+CIPSTART="TCP",%s,%d`, quote(host), port)
}

// StartUDP builds the command that opens a UDP transport. The last field
// keeps the remote peer fixed (mode 0).
func StartUDP(host string, port, localPort int) string {
	return fmt.Sprintf(`AT+CIPSTART="UDP",%s,%d,%d,0`, quote(host), port, localPort)
}

// Send builds the command that announces a payload of n bytes.
func Send(n int) string {
	return fmt.Sprintf("AT+CIPSEND=%d", n)
}
