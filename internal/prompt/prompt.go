package prompt

import (
	"fmt"
	"strings"

	"sitegen/internal/models"
)

const frontendSystem = `You are an expert frontend developer. Generate a single, complete HTML file with embedded CSS and JavaScript.

REQUIREMENTS:
- ONLY output HTML, CSS, and JavaScript in a SINGLE HTML file
- Use TailwindCSS via CDN: <script src="https://cdn.tailwindcss.com"></script>
- For icons, use a CDN library (Heroicons, Lucide, or Font Awesome)
- Make the design modern, responsive, and beautiful
- Include proper meta tags and viewport settings
- Output starts with <!DOCTYPE html> and ends with </html>
- NO explanations, ONLY the HTML code`

const fullstackSystem = "You are an expert fullstack developer. Generate a complete web application with both frontend and backend.\n" +
	"\n" +
	"OUTPUT FORMAT - Use code blocks with filenames:\n" +
	"```html:index.html\n" +
	"<!-- Frontend HTML code -->\n" +
	"```\n" +
	"\n" +
	"```css:styles.css\n" +
	"/* Optional separate CSS */\n" +
	"```\n" +
	"\n" +
	"```javascript:app.js\n" +
	"// Frontend JavaScript\n" +
	"```\n" +
	"\n" +
	"```javascript:server.js\n" +
	"// Backend Node.js/Express code\n" +
	"```\n" +
	"\n" +
	"```json:package.json\n" +
	"{\n" +
	"  \"name\": \"app\",\n" +
	"  \"dependencies\": {}\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"REQUIREMENTS:\n" +
	"- Generate complete, working code for both frontend and backend\n" +
	"- Use modern practices: ES modules, async/await, proper error handling\n" +
	"- Backend: Node.js with Express, include all necessary routes\n" +
	"- Frontend: Modern HTML5, TailwindCSS, vanilla JS or specify framework\n" +
	"- Include package.json with all dependencies\n" +
	"- Add helpful comments explaining key functionality\n" +
	"- Make it production-ready with proper security practices"

const designCloneSystem = `You are an expert at recreating web designs. Analyze the provided website design and recreate it as a pixel-perfect HTML/CSS implementation.

REQUIREMENTS:
- Match the layout, colors, typography, and spacing exactly
- Use TailwindCSS for styling where possible
- Include all visual elements, buttons, forms, etc.
- Make it responsive if the original is responsive
- Use placeholder images from picsum.photos or similar
- Output a single complete HTML file
- NO explanations, ONLY the HTML code`

func systemPrompt(mode models.Mode) string {
	switch mode {
	case models.ModeFullstack:
		return fullstackSystem
	case models.ModeDesignClone:
		return designCloneSystem
	default:
		return frontendSystem
	}
}

// Compose builds the ordered message list for a generation request.
//
// Design-clone requests with a source URL are single-turn: one user
// message embedding the URL and the free-form instructions. All other
// requests replay the previous prompt as a user turn and the current
// artifact as an assistant turn, so the model treats the existing code
// as its own prior output subject to revision, then close with the new
// prompt as the final user message.
func Compose(req models.GenerationRequest, mode models.Mode) []models.Message {
	messages := []models.Message{
		{Role: models.RoleSystem, Content: systemPrompt(mode)},
	}

	if mode == models.ModeDesignClone && req.DesignURL != "" {
		messages = append(messages, models.Message{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("Clone this website design: %s\n\nAdditional instructions: %s", req.DesignURL, req.Prompt),
		})
		return messages
	}

	if req.PreviousPrompt != "" {
		messages = append(messages, models.Message{Role: models.RoleUser, Content: req.PreviousPrompt})
	}

	if strings.TrimSpace(req.HTML) != "" {
		messages = append(messages, models.Message{
			Role:    models.RoleAssistant,
			Content: fmt.Sprintf("Current code:\n```html\n%s\n```", req.HTML),
		})
	}

	messages = append(messages, models.Message{Role: models.RoleUser, Content: req.Prompt})
	return messages
}
