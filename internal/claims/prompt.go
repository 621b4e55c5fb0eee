package claims

import "strings"

const promptTemplate = "You are a medical researcher. Extract every discrete medical claim or recommendation from the text below. Return a JSON array of concise statements.\n\nTranscript:\n'''{transcript}'''\n\nOutput:"

// BuildPrompt embeds transcript verbatim in the extraction prompt.
func BuildPrompt(transcript string) string {
	return strings.Replace(promptTemplate, "{transcript}", transcript, 1)
}
