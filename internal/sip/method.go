// Package sip parses SIP messages: the payload validator, the
// case-insensitive regex header parser, and the method enumeration.
package sip

import "strings"

// Method enumerates the SIP request methods this module recognizes.
// Responses carry no Method; their status code is stored separately on
// Message.
type Method int

const (
	MethodUnknown Method = iota
	MethodRegister
	MethodInvite
	MethodSubscribe
	MethodNotify
	MethodOptions
	MethodPublish
	MethodMessage
	MethodCancel
	MethodBye
	MethodAck
	MethodPrack
	MethodInfo
	MethodRefer
	MethodUpdate
)

var methodNames = [...]string{
	MethodUnknown:   "",
	MethodRegister:  "REGISTER",
	MethodInvite:    "INVITE",
	MethodSubscribe: "SUBSCRIBE",
	MethodNotify:    "NOTIFY",
	MethodOptions:   "OPTIONS",
	MethodPublish:   "PUBLISH",
	MethodMessage:   "MESSAGE",
	MethodCancel:    "CANCEL",
	MethodBye:       "BYE",
	MethodAck:       "ACK",
	MethodPrack:     "PRACK",
	MethodInfo:      "INFO",
	MethodRefer:     "REFER",
	MethodUpdate:    "UPDATE",
}

// MethodStr renders a Method as its wire token (sip_method_str).
func MethodStr(m Method) string {
	if int(m) < 0 || int(m) >= len(methodNames) {
		return ""
	}
	return methodNames[m]
}

// MethodFromStr maps a wire token back to a Method (sip_method_from_str),
// case-insensitively. Unknown tokens return MethodUnknown.
func MethodFromStr(s string) Method {
	for m, name := range methodNames {
		if name != "" && strings.EqualFold(name, s) {
			return Method(m)
		}
	}
	return MethodUnknown
}
