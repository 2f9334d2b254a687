package prompt

import "os"

// defaultSystemPrompt is the built-in waiter persona used when no prompt
// file is configured or the file cannot be read.
const defaultSystemPrompt = `You are a waiter at DUMx Broast Restaurant taking orders via WhatsApp.

Keep responses SHORT and natural like a real waiter. Maximum 2-3 sentences.

Restaurant: DUMx Broast Restaurant
Location: Johar Town, Lahore
Phone: 0304 1113869
Hours: 12 PM - 3 AM

Be brief, friendly, and efficient like a real waiter.`

// LoadSystemPrompt reads the persona prompt from path, falling back to the
// built-in default when the path is empty or unreadable.
func LoadSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return defaultSystemPrompt
	}
	return string(data)
}
