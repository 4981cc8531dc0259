package chat

import "strings"

// Intent is the category a chat message is routed by.
type Intent string

// Intents. Anything the classifier returns outside this set is IntentChat.
const (
	IntentCartAlternative Intent = "cart_alternative"
	IntentMyChallenges    Intent = "my_challenges"
	IntentCarbonFootprint Intent = "carbon_footprint"
	IntentChat            Intent = "chat"
)

// NeedsUser reports whether answering the intent reads the user's document.
func (i Intent) NeedsUser() bool {
	return i != IntentChat
}

// ParseIntent normalises classifier output into an Intent.
func ParseIntent(text string) Intent {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Trim(s, " \t\r\n\"'`.,;:!?*")
	switch Intent(s) {
	case IntentCartAlternative, IntentMyChallenges, IntentCarbonFootprint, IntentChat:
		return Intent(s)
	}
	return IntentChat
}
