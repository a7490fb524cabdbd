package orchestrator

import (
	"fmt"
	"time"
)

// DefaultSystemPrompt is the persona used when no system prompt is
// configured.
const DefaultSystemPrompt = `You are a chat bot. Your name is Mosscap and
you have one goal: figure out what people need.
Your full name, should you need to know it, is
Splendid Speckled Mosscap. You communicate
effectively, but you tend to answer with long
flowery prose.`

const (
	intentTemplate = "Return True if the intent of the following input is to ask a question that can only be answered with a online search, and False otherwise: %s, remember do not return anything else."

	queryTemplate = "Create a search query that can be sent to a web search engine, do not try to answer and only use the context to create the query not to answer, current date %s, context: %s, question: %s, make sure that the query actually answers the question, don't get distracted by the context."

	summaryTemplate = "Please summarize the following conversation in one or two sentences: %s"
)

func intentPrompt(input string) string {
	return fmt.Sprintf(intentTemplate, input)
}

func queryPrompt(now time.Time, history, input string) string {
	return fmt.Sprintf(queryTemplate, now.Format("2006-01-02"), history, input)
}

func summaryPrompt(history string) string {
	return fmt.Sprintf(summaryTemplate, history)
}
