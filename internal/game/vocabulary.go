package game

// Vocabulary is the fixed list of words a session draws from.
var Vocabulary = []string{
	"queen", "hospital", "basketball", "cat", "change",
	"snail", "soup", "calendar", "sad", "desk",
	"guitar", "home", "railway", "zebra", "jelly",
	"car", "crow", "trade", "bag", "roll",
	"bubble",
}
