package gemini

import (
	"fmt"
	"strings"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

const extractionPrompt = `Analyze the attached document to generate a mock test.
Identify all multiple-choice questions, their options, and the correct answer.

CRITICAL INSTRUCTION FOR TEXT FLOW:
- Fix Broken Lines: the text might be broken into multiple lines due to column width. Join these lines to form complete, continuous sentences. Do NOT keep hard line breaks in the middle of a sentence.
- Paragraphs: only keep line breaks if they clearly separate different paragraphs or list items.

CRITICAL INSTRUCTION FOR MATH:
- Use inline LaTeX (single $...$) for all math expressions.
- For fractions, integrals, or complex notation, strictly use \displaystyle inside the dollar signs. Example: $\displaystyle \frac{x^2}{y}$.
- Do NOT use double dollar signs ($$...$$).

CRITICAL INSTRUCTION FOR LANGUAGES:
- If the document contains questions in BOTH English and Hindi (or another language), extract BOTH.
- Map English text to 'question' and 'options'.
- Map Hindi/second-language text to 'questionHindi' and 'optionsHindi'.
- If only one language is present, leave the Hindi fields empty.

The correct answer might be marked. If not, please infer it.`

const answerKeyPrompt = `
I have also attached an answer key document. Use this second file to strictly determine the correct option for each question identified in the first document.`

func buildExplainPrompt(q model.Question) string {
	return fmt.Sprintf(`Analyze the following question and provide a very short, concise explanation (max 3-4 sentences) in BOTH English and Hindi.

Question: %q
Options:
%s

Correct Answer: %q

Instructions:
1. First, provide the explanation in English.
2. Then, provide the same explanation translated into Hindi.
3. Directly state the key fact or reasoning for the correct answer.
4. Do not write long introductions like "Here is the analysis".
5. If there is math, use inline LaTeX with single $ delimiters. For fractions, use $\displaystyle \frac{a}{b}$.

Format the response using markdown like this:
**English:** [English Explanation]

**Hindi:** [Hindi Explanation]`,
		q.Text, numberedOptions(q.Options), q.Options[q.CorrectOption])
}

func buildDetailedExplainPrompt(q model.Question) string {
	return fmt.Sprintf(`Provide a DETAILED yet SIMPLE and EASY TO UNDERSTAND solution for the following question.

Question: %q
Options:
%s

Correct Answer: %q

Instructions:
1. Break down the solution into simple steps.
2. Avoid complex jargon. Explain it as if teaching a beginner.
3. If it involves calculation, show every step clearly.
4. Provide the explanation in BOTH English and Hindi.
5. Use inline LaTeX with single $ delimiters for all math. For fractions, use $\displaystyle \frac{a}{b}$.

Format:
**Detailed Solution (English):**
[Simple, step-by-step explanation]

**Detailed Solution (Hindi):**
[Simple, step-by-step explanation]`,
		q.Text, numberedOptions(q.Options), q.Options[q.CorrectOption])
}

func buildTranslatePrompt(question string, options []string, targetLanguage string) string {
	return fmt.Sprintf(`Translate the following question and its options from their current language to %s.

Question: %q
Options:
%s

Ensure the translation is accurate for an academic/exam context.
Use inline LaTeX for math ($\displaystyle \frac{a}{b}$) if present.

Return ONLY a JSON object with keys "question" and "options".`,
		targetLanguage, question, numberedOptions(options))
}

func buildChatPrompt(history []ChatTurn, message string) string {
	var b strings.Builder
	b.WriteString(`You are an exam preparation assistant. Your goal is to help students prepare for exams.
You solve problems, explain concepts, and provide motivation.
Keep answers concise, educational, and easy to understand.
If the student provides an image of a question, solve it step by step.
Use inline LaTeX ($ ... $) for math formulas. For fractions, use $\displaystyle \frac{a}{b}$.

Conversation History:
`)
	for _, turn := range history {
		speaker := "AI"
		if turn.Role == "user" {
			speaker = "Student"
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nStudent: ")
	b.WriteString(message)
	return b.String()
}

func numberedOptions(options []string) string {
	lines := make([]string, len(options))
	for i, opt := range options {
		lines[i] = fmt.Sprintf("%d. %s", i+1, opt)
	}
	return strings.Join(lines, "\n")
}
