package ports

// FeedbackPort receives the cues a presentation layer turns into sound or effects.
type FeedbackPort interface {
	// Tap is called whenever a card is turned face up.
	Tap()
	// Match is called when a pair is won.
	Match()
	// Win is called once per game when the last pair is won. tie is true when the
	// top score was shared.
	Win(winner string, tie bool)
}
