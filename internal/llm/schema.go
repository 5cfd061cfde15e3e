package llm

// SentenceFormat requests a JSON object with a single required "sentence" string.
func SentenceFormat() *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:   "stoic_sentence",
			Strict: true,
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sentence": map[string]any{
						"type":        "string",
						"description": "Generated stoic sentence based on user's reflection",
					},
				},
				"required":             []string{"sentence"},
				"additionalProperties": false,
			},
		},
	}
}
