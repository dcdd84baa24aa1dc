package notegen

import "fmt"

const promptTemplate = `You are an expert note-taker who organizes lecture content into clear, structured notes.

Take this lecture transcription and transform it into well-organized, Notion-style notes with:
1. A clear title based on the content
2. Headings and subheadings for main topics
3. Bullet points for key points
4. Numbered lists for sequential steps or processes
5. Callout blocks for important definitions or concepts
6. Code blocks for any technical examples
7. To-do items for action items or homework

The notes should capture the essential information in a concise, readable format that's easy to study from.
Transcription: %s

Return the notes in JSON format as a string with this structure:
{
  "title": "Lecture Title",
  "blocks": [
    {"type": "title", "content": "Main Title"},
    {"type": "heading", "content": "Section Heading"},
    {"type": "paragraph", "content": "Text content..."},
    {"type": "bullet-list", "content": "Bullet point item"},
    {"type": "numbered-list", "content": "Numbered list item"},
    {"type": "code", "content": "code example"},
    {"type": "callout", "content": "Important note"},
    {"type": "todo", "content": "Task to do", "checked": false}
  ]
}
`

// BuildPrompt renders the note-taking instructions around a transcript
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}
