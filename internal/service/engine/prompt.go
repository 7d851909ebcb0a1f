package engine

// systemPrompt pins the output format: bare SVG built from pen-stroke paths,
// nothing else, so partial output renders as it streams.
const systemPrompt = `You are an SVG artist. Output ONLY SVG code.
- Begin with <svg> and end with </svg>
- Use viewBox="0 0 400 400"
- No markdown, no narration
- Use ONLY <path> elements - NO circles, rectangles, polygons, or other shapes
- Draw like a pen sketch: continuous strokes with M, L, C commands
- stroke="#000" stroke-width="3" fill="none"
- Do NOT over-simplify - add detail, texture, and expressiveness
- Draw the actual form, not geometric approximations`

// chainInput builds the template input for one generation.
func chainInput(userPrompt string) map[string]any {
	return map[string]any{
		"system": systemPrompt,
		"query":  "Draw: " + userPrompt,
	}
}
