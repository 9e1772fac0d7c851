// Package protocol defines the newline-delimited text protocol spoken
// between the relay server and its clients. Every frame is a single line;
// the leading prefix token decides how the rest of the line is read.
package protocol

import "strings"

// Frame prefixes. Prefixes are case-sensitive literal tokens.
const (
	prefixChat     = "MSG:"
	prefixVoice    = "VOICE:"
	prefixStart    = "STATUS:START:"
	prefixStop     = "STATUS:STOP:"
	prefixUserlist = "USERLIST:"
	prefixNotice   = "SERVER:"

	// Busy is the complete denial frame sent to a client whose talk
	// request lost arbitration. It is only ever unicast.
	Busy = "STATUS:BUSY"
)

// Kind represents the type of a protocol frame.
type Kind int

const (
	// KindRaw is any line that matches no known prefix. Raw lines are
	// forwarded verbatim so newer clients can speak past older servers.
	KindRaw Kind = iota
	KindChat
	KindVoice
	KindStart
	KindStop
	KindBusy
	KindUserlist
	KindNotice
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "CHAT"
	case KindVoice:
		return "VOICE"
	case KindStart:
		return "START"
	case KindStop:
		return "STOP"
	case KindBusy:
		return "BUSY"
	case KindUserlist:
		return "USERLIST"
	case KindNotice:
		return "NOTICE"
	default:
		return "RAW"
	}
}

// Message is one parsed protocol line.
//
// Which fields are set depends on Kind: Sender is the nickname carried by
// STATUS:START and STATUS:STOP frames and by server-formatted chat lines;
// Content is the chat text, voice payload, comma-joined roster, or notice
// text. For KindRaw, Content is the whole line.
type Message struct {
	Kind    Kind
	Sender  string
	Content string
}

// Parse classifies a single protocol line. It never fails: lines that match
// no known prefix come back as KindRaw with Content set to the line itself.
func Parse(line string) Message {
	switch {
	case line == Busy:
		return Message{Kind: KindBusy}
	case strings.HasPrefix(line, prefixStart):
		return Message{Kind: KindStart, Sender: line[len(prefixStart):]}
	case strings.HasPrefix(line, prefixStop):
		return Message{Kind: KindStop, Sender: line[len(prefixStop):]}
	case strings.HasPrefix(line, prefixChat):
		m := Message{Kind: KindChat}
		m.Sender, m.Content = splitChat(line[len(prefixChat):])
		return m
	case strings.HasPrefix(line, prefixVoice):
		return Message{Kind: KindVoice, Content: line[len(prefixVoice):]}
	case strings.HasPrefix(line, prefixUserlist):
		return Message{Kind: KindUserlist, Content: line[len(prefixUserlist):]}
	case strings.HasPrefix(line, prefixNotice):
		return Message{Kind: KindNotice, Content: strings.TrimSpace(line[len(prefixNotice):])}
	default:
		return Message{Kind: KindRaw, Content: line}
	}
}

// splitChat separates "nick: text" as formatted by the server. Client-sent
// chat frames carry no sender, so a tail without ": " is all content.
func splitChat(tail string) (sender, content string) {
	if i := strings.Index(tail, ": "); i >= 0 {
		return tail[:i], tail[i+2:]
	}
	return "", tail
}

// ChatTail returns the undivided text of a chat frame: everything after
// the MSG: prefix. The relay rebroadcasts client chat from this, not from
// Parse's sender/content split, because client-sent text may itself
// contain ": ".
func ChatTail(line string) string {
	return strings.TrimPrefix(line, prefixChat)
}

// Users splits a KindUserlist message into the roster it carries, in the
// order the server sent it. An empty roster yields a nil slice.
func (m Message) Users() []string {
	if m.Content == "" {
		return nil
	}
	return strings.Split(m.Content, ",")
}

// FormatChat builds the server-to-client chat line "MSG:<nick>: <text>".
func FormatChat(nick, text string) string {
	return prefixChat + nick + ": " + text
}

// FormatSend builds the client-to-server chat line "MSG:<text>".
func FormatSend(text string) string {
	return prefixChat + text
}

// FormatVoice builds a voice frame around an already-encoded payload.
// The relay never decodes the payload; neither does this package.
func FormatVoice(payload string) string {
	return prefixVoice + payload
}

// FormatStart builds the talk-start frame for nick.
func FormatStart(nick string) string {
	return prefixStart + nick
}

// FormatStop builds the talk-stop frame for nick.
func FormatStop(nick string) string {
	return prefixStop + nick
}

// FormatUserlist builds the roster frame. Order is preserved.
func FormatUserlist(nicks []string) string {
	return prefixUserlist + strings.Join(nicks, ",")
}

// FormatJoinNotice builds the notice broadcast when nick joins.
func FormatJoinNotice(nick string) string {
	return prefixNotice + " " + nick + " has joined the chatroom."
}

// FormatLeaveNotice builds the notice broadcast when nick leaves.
func FormatLeaveNotice(nick string) string {
	return prefixNotice + " " + nick + " has left the chatroom."
}
