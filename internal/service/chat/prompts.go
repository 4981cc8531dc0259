package chat

import "fmt"

const classifyTemplate = `Classify the shopper's message for Amazon Green, a sustainable shopping platform.
Answer with exactly one word from this list and nothing else:
cart_alternative - asks for a greener alternative to something they bought
my_challenges - asks about their eco challenges, progress or badges
carbon_footprint - asks about the carbon footprint of their purchases
chat - anything else

Message: %q
Category:`

const personaTemplate = `You are Green Partner, an AI assistant for Amazon Green - a sustainable shopping platform.

User Message: %q

Respond as a helpful, eco-conscious shopping assistant. Give practical advice about sustainable
product alternatives, the environmental impact of purchases and reducing carbon footprint.
Keep responses conversational and short.`

func classifyPrompt(message string) string {
	return fmt.Sprintf(classifyTemplate, message)
}

func personaPrompt(message string) string {
	return fmt.Sprintf(personaTemplate, message)
}
