package coach

import (
	"encoding/json"
	"fmt"
	"strings"
)

const generalRules = `GENERAL RULES:
- Always respect the user's constraints: available time, injuries, soreness and equipment
- Refer to concrete numbers from the history when deciding, e.g. "your bench went from 75kg to 80kg in 3 weeks"
- Without any history, build a sensible first session from the exercise library and the preferences
- Prefer exercises from the library and only add new ones for a clear reason
- Give every new exercise one of the existing categories
- Keep the session realistic, usually 4-6 exercises with 3-5 sets each
- Time-based exercises such as planks and holds use the time field instead of reps`

const analysisApproach = `ANALYSIS APPROACH:
Before writing the session, work out:
1. What the user trained in the last 2-3 sessions: muscle groups, volume and performance
2. Which training split they follow, or which one to propose if none is apparent
3. Which muscle groups are due today
4. Whether anything points to stalling, fatigue or a needed deload
5. Which progression each exercise should get`

const outputInstructions = `OUTPUT:
Answer only with the generate_workout JSON object.
Keep the rationale short, 2-3 sentences on why this session was chosen.`

// systemPrompt frames the model as a coach working in mode.
func systemPrompt(mode Mode) string {
	var b strings.Builder
	b.WriteString("You are an expert strength and conditioning coach inside a gym tracking app.\n")
	b.WriteString("You analyse the user's training history and plan their next workout session.\n\n")
	fmt.Fprintf(&b, "COACHING MODE: %s\n%s\n\n", strings.ToUpper(mode.Name), mode.Instructions)
	b.WriteString(generalRules)
	b.WriteString("\n\n")
	b.WriteString(analysisApproach)
	b.WriteString("\n\n")
	b.WriteString(outputInstructions)
	return b.String()
}

// userMessage renders p as the sections of the user turn.
func userMessage(p payload) (string, error) {
	var parts []string

	var constraints []string
	if p.Preferences.TimeAvailable > 0 {
		constraints = append(constraints, fmt.Sprintf("Time available: %d minutes", p.Preferences.TimeAvailable))
	}
	if s := strings.TrimSpace(p.Preferences.Injuries); s != "" {
		constraints = append(constraints, "Injuries/soreness: "+s)
	}
	if s := strings.TrimSpace(p.Preferences.Notes); s != "" {
		constraints = append(constraints, "Notes: "+s)
	}
	if len(constraints) > 0 {
		parts = append(parts, "USER CONSTRAINTS:\n"+strings.Join(constraints, "\n"))
	}

	parts = append(parts, "AVAILABLE CATEGORIES:\n"+strings.Join(p.Categories, ", "))

	library, err := json.MarshalIndent(p.Exercises, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal exercise library: %w", err)
	}
	parts = append(parts, "EXERCISE LIBRARY:\n"+string(library))

	if len(p.History) > 0 {
		history, err := json.MarshalIndent(p.History, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal workout history: %w", err)
		}
		parts = append(parts, fmt.Sprintf("WORKOUT HISTORY (most recent first, %d sessions):\n%s",
			len(p.History), history))
	} else {
		parts = append(parts, "WORKOUT HISTORY: No previous sessions recorded. "+
			"This is the first session, so design a suitable starting workout.")
	}

	parts = append(parts, "Generate my next training session.")
	return strings.Join(parts, "\n\n"), nil
}
