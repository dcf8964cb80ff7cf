package question

// Question is one quiz record as delivered by the upstream source.
// AnswerText and AltAnswers never leave the server.
type Question struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	AnswerText string   `json:"answerText"`
	AltAnswers []string `json:"altAnswers"`
}

// Batch holds the questions fetched for one game mode.
type Batch struct {
	Mode      string     `json:"mode"`
	Questions []Question `json:"questions"`
}
