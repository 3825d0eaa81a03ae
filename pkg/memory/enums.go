package memory

import "strings"

// Channel is the closed set of communication channels. Unknown external
// labels normalize to ChannelOther at the ingestion boundary rather than
// being accepted as arbitrary strings.
type Channel string

const (
	ChannelPhone    Channel = "phone"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelWebchat  Channel = "webchat"
	ChannelOther    Channel = "other"
)

// ParseChannel maps a raw channel label to the closed enum. It never
// fails; anything unrecognized is ChannelOther.
func ParseChannel(label string) Channel {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "phone", "call", "voice", "voicemail":
		return ChannelPhone
	case "sms", "text":
		return ChannelSMS
	case "email", "mail":
		return ChannelEmail
	case "whatsapp", "wa":
		return ChannelWhatsApp
	case "webchat", "chat", "web", "livechat", "live_chat":
		return ChannelWebchat
	default:
		return ChannelOther
	}
}

// Direction indicates who initiated the communication.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// ParseDirection normalizes a raw direction label, defaulting to inbound.
func ParseDirection(label string) Direction {
	if strings.EqualFold(strings.TrimSpace(label), string(DirectionOutbound)) {
		return DirectionOutbound
	}
	return DirectionInbound
}

// Sentiment is the closed sentiment classification.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// FactCategory classifies a derived key fact.
type FactCategory string

const (
	CategoryPreference FactCategory = "preference"
	CategoryCommitment FactCategory = "commitment"
	CategoryObjection  FactCategory = "objection"
	CategoryQuestion   FactCategory = "question"
	CategoryOther      FactCategory = "other"
)
