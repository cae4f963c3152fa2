package loop

import (
	"fmt"
	"strings"

	"GoForgeAI/app/models"
)

// PromptSuffix appends the only-code instruction to the operator prompt so
// the reply arrives in a single extractable fenced block.
func PromptSuffix(prompt, language string) string {
	if !strings.HasSuffix(prompt, "\n") {
		prompt += "\n"
	}
	return prompt + fmt.Sprintf(
		"Only output %s code inside a single ```%s``` block. Do not give commentary.\n",
		language, language)
}

// buildMessages renders the original prompt plus every prior failed
// (source, diagnostic) pair into one outbound conversation, oldest first, so
// the model sees the cumulative history of all rejections.
func buildMessages(task Task, exchanges []exchange) []models.Message {
	messages := make([]models.Message, 0, 1+2*len(exchanges))
	messages = append(messages, models.Message{Role: "user", Content: task.Prompt})

	for _, ex := range exchanges {
		messages = append(messages, models.Message{Role: "assistant", Content: ex.source})

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("The following %s code failed to compile:\n", task.Language))
		sb.WriteString(fmt.Sprintf("```%s\n%s\n```\n", task.Language, ex.source))
		sb.WriteString(fmt.Sprintf("Error: %s\n", ex.diagnostic))
		sb.WriteString(fmt.Sprintf("Please fix the code and return it in a ```%s``` block.", task.Language))
		messages = append(messages, models.Message{Role: "user", Content: sb.String()})
	}

	return messages
}
