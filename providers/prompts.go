package providers

import "fmt"

const summaryTemplate = `You are an intelligent agent specialised in analysing and explaining content thoroughly and simply.

Content extracted from the URL: %s

%s

Task:
1. Analyse this content carefully.
2. Give a general summary first.
3. Then explain the content in detail and in simple terms.
4. Use a respectful, friendly tone without complicated jargon.
5. If you find source code, explain each snippet together with the steps to run it.
6. Focus on artificial intelligence topics if present.
7. Format the result as clean, well-structured Markdown.
8. Add illustrative examples where helpful.

Write the complete explanation in %s only.`

const codeTemplate = `Analyse the following content and look for any source code:

%s

If you find code:
1. Identify the programming language.
2. Explain what each piece of code does.
3. Give practical steps to run it.
4. List the required libraries.
5. Give practical examples.

Answer in %s using Markdown.`

// SummaryPrompt baut den Prompt für die Zusammenfassung. Der Inhalt wird nicht gekürzt.
func SummaryPrompt(language, url, content string) string {
	return fmt.Sprintf(summaryTemplate, url, content, language)
}

// CodePrompt baut den Prompt für die Code-Erklärung.
func CodePrompt(language, code string) string {
	return fmt.Sprintf(codeTemplate, code, language)
}
