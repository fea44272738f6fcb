package discordgo

type Color int

const (
	ColorGreen     Color = 0x57f287
	ColorBlue      Color = 0x3498db
	ColorPurple    Color = 0x9b59b6
	ColorGold      Color = 0xf1c40f
	ColorLightGrey Color = 0xbcc0c0
)
