package coach

const schemaName = "generate_workout"

// workoutSchema is the strict structured output schema of a suggested session. Strict mode requires every
// property to be listed as required and additional properties to be disallowed on every object. The category
// is restricted to categories when any are given.
func workoutSchema(categories []string) map[string]any {
	category := map[string]any{
		"type":        "string",
		"description": "Category from the user's category list, e.g. Push, Pull or Legs",
	}
	if len(categories) > 0 {
		category["enum"] = categories
	}
	set := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"weight": map[string]any{"type": "number", "description": "Weight in kg, 0 for bodyweight"},
			"reps":   map[string]any{"type": "integer", "description": "Target reps, 0 when time-based"},
			"time":   map[string]any{"type": "integer", "description": "Target time in seconds, 0 when rep-based"},
		},
		"required":             []string{"weight", "reps", "time"},
		"additionalProperties": false,
	}
	exercise := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Exercise name, reuse library names where possible",
			},
			"category": category,
			"timeMode": map[string]any{
				"type":        "boolean",
				"description": "True for time-based exercises such as planks and holds, false for rep-based",
			},
			"sets": map[string]any{"type": "array", "items": set},
			"notes": map[string]any{
				"type":        "string",
				"description": "Coaching cues or progression context for this exercise, empty when none",
			},
		},
		"required":             []string{"name", "category", "timeMode", "sets", "notes"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rationale": map[string]any{
				"type":        "string",
				"description": "Why this session was designed, 2-3 short and actionable sentences",
			},
			"focus": map[string]any{
				"type":        "string",
				"description": `Primary focus of the session, e.g. "Push", "Legs" or "Full Body"`,
			},
			"estimated_minutes": map[string]any{
				"type":        "integer",
				"description": "Estimated session duration in minutes",
			},
			"exercises": map[string]any{
				"type":        "array",
				"description": "Exercises of the session in order",
				"items":       exercise,
			},
		},
		"required":             []string{"rationale", "focus", "estimated_minutes", "exercises"},
		"additionalProperties": false,
	}
}
