// internal/models/models.go
package models

// Color is a card color. WILD is both the printed color of wild cards and
// the "no color yet" value of a fresh lobby's active color.
type Color string

const (
	ColorRed    Color = "RED"
	ColorBlue   Color = "BLUE"
	ColorGreen  Color = "GREEN"
	ColorYellow Color = "YELLOW"
	ColorWild   Color = "WILD"
)

// StandardColors lists the four playable colors in their fixed enumeration
// order. The bot's wild-color tiebreak depends on this order.
var StandardColors = [4]Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// Value is a card face value.
type Value string

const (
	ValueZero         Value = "0"
	ValueOne          Value = "1"
	ValueTwo          Value = "2"
	ValueThree        Value = "3"
	ValueFour         Value = "4"
	ValueFive         Value = "5"
	ValueSix          Value = "6"
	ValueSeven        Value = "7"
	ValueEight        Value = "8"
	ValueNine         Value = "9"
	ValueSkip         Value = "SKIP"
	ValueReverse      Value = "REVERSE"
	ValueDrawTwo      Value = "+2"
	ValueWild         Value = "WILD"
	ValueWildDrawFour Value = "+4"
)

// NumberValues lists 1 through 9 (zero is a single per color and handled apart).
var NumberValues = [9]Value{
	ValueOne, ValueTwo, ValueThree, ValueFour, ValueFive,
	ValueSix, ValueSeven, ValueEight, ValueNine,
}

// Card is a single card instance. Immutable after creation except for
// ChosenColor, stamped when a wild is played, and Rotation, a cosmetic
// display angle assigned at play time.
type Card struct {
	ID          string `json:"id"`
	Color       Color  `json:"color"`
	Value       Value  `json:"value"`
	ChosenColor Color  `json:"chosenColor,omitempty"`
	Rotation    int    `json:"rotation,omitempty"`
}

// IsWild reports whether the card's printed color is WILD.
func (c *Card) IsWild() bool { return c.Color == ColorWild }

// Player is a seat in a match. Turn order is the player slice order.
type Player struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Hand       []*Card `json:"hand"`
	IsBot      bool    `json:"isBot"`
	AvatarID   int     `json:"avatarId"`
	HasSaidUno bool    `json:"hasSaidUno"`
}

// GameStatus is the match lifecycle state.
type GameStatus string

const (
	StatusLobby    GameStatus = "LOBBY"
	StatusPlaying  GameStatus = "PLAYING"
	StatusGameOver GameStatus = "GAME_OVER"
)

// GameMode selects the rule set at room creation.
type GameMode string

const (
	ModeStandard GameMode = "standard"
	ModeChaos    GameMode = "chaos"
	ModeNoMercy  GameMode = "no-mercy"
)

// GameRules is the fixed rule configuration derived from the mode.
type GameRules struct {
	Stacking  bool `json:"stacking"`
	JumpIn    bool `json:"jumpIn"`
	SevenZero bool `json:"sevenZero"`
	ForcePlay bool `json:"forcePlay"` // reserved, unused
}

// RulesForMode maps a mode to its rule set. Unknown modes play standard.
func RulesForMode(mode GameMode) GameRules {
	switch mode {
	case ModeChaos:
		return GameRules{Stacking: true, JumpIn: true, SevenZero: true}
	case ModeNoMercy:
		return GameRules{ForcePlay: true}
	default:
		return GameRules{}
	}
}

// User is a persistent player record (the settlement collaborator's view).
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	MMR      int    `json:"mmr"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	AvatarID int    `json:"avatarId"`
	Coins    int    `json:"coins"`
}

// StatsUpdate describes a settlement delta applied to a user record.
// MMRDelta may be negative; the store floors the result at zero.
type StatsUpdate struct {
	MMRDelta   int
	Won        bool
	CoinsDelta int
}
