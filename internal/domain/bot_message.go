package domain

const (
	MessageUpdateStart = "update_start"
	MessageRules       = "rules"
)

// DefaultMessages is used when the store has no override for a key.
var DefaultMessages = map[string]string{
	MessageUpdateStart: "Hold tight, happyBot is getting an update!",
	MessageRules:       "Here are the rules: <http://bit.ly/2ihUfAc>",
}
