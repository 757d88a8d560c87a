package enums

type RevealChannel string

const (
	RevealChannelNone     RevealChannel = "none"
	RevealChannelWhatsApp RevealChannel = "whatsapp"
	RevealChannelRoom     RevealChannel = "room"
	RevealChannelBoth     RevealChannel = "both"
)

// ParseRevealChannel matches the channel names exactly; "none" is a state, not a choice.
func ParseRevealChannel(raw string) (RevealChannel, bool) {
	switch RevealChannel(raw) {
	case RevealChannelWhatsApp:
		return RevealChannelWhatsApp, true
	case RevealChannelRoom:
		return RevealChannelRoom, true
	case RevealChannelBoth:
		return RevealChannelBoth, true
	default:
		return "", false
	}
}

func (c RevealChannel) IncludesWhatsApp() bool {
	return c == RevealChannelWhatsApp || c == RevealChannelBoth
}

func (c RevealChannel) IncludesRoom() bool {
	return c == RevealChannelRoom || c == RevealChannelBoth
}
